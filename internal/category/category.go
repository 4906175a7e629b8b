package category

import (
	types "servimarket/internal/types/category"
)

// Category is a flat name record offers reference by nombre.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

type CategoryRepo interface {
	Create(c types.CreateCategory) (*Category, error)
	List() ([]Category, error)
	Delete(id string) error
	// ExistsByName is the referential check used when an offer is
	// created or its category is changed.
	ExistsByName(name string) (bool, error)
}
