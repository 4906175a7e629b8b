package category

// CreateCategory is the payload for registering a new category name.
type CreateCategory struct {
	Name string `json:"nombre"`
}
