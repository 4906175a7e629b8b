package category

import (
	"database/sql"
	"errors"

	types "servimarket/internal/types/category"
	myErr "servimarket/internal/types/errors"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type CategoryDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewCategoryDBRepository(db *sql.DB, l *zap.SugaredLogger) *CategoryDBRepository {
	return &CategoryDBRepository{
		DB:     db,
		Logger: l,
	}
}

func (cr *CategoryDBRepository) Create(c types.CreateCategory) (*Category, error) {
	var newCat Category

	query := `
	INSERT INTO categorias (nombre)
	VALUES ($1)
	RETURNING id, nombre
	`

	err := cr.DB.QueryRow(query, c.Name).Scan(&newCat.ID, &newCat.Name)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, myErr.ErrAlreadyExists
		}
		cr.Logger.Errorf("Error creating category: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &newCat, nil
}

func (cr *CategoryDBRepository) List() ([]Category, error) {
	query := `SELECT id, nombre FROM categorias ORDER BY nombre`

	rows, err := cr.DB.Query(query)
	if err != nil {
		cr.Logger.Errorf("Error listing categories: %v", err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, myErr.ErrDBInternal
		}
		categories = append(categories, c)
	}

	return categories, nil
}

func (cr *CategoryDBRepository) Delete(id string) error {
	res, err := cr.DB.Exec(`DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		cr.Logger.Errorf("Error deleting category %s: %v", id, err)
		return myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return myErr.ErrNotFound
	}

	return nil
}

func (cr *CategoryDBRepository) ExistsByName(name string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM categorias WHERE nombre = $1)`

	if err := cr.DB.QueryRow(query, name).Scan(&exists); err != nil {
		cr.Logger.Errorf("Error checking category %q: %v", name, err)
		return false, myErr.ErrDBInternal
	}

	return exists, nil
}
