package libraries

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clinmeta/cmdr-backend/pkg/db/models"
)

// Repository persists library rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByName loads a library by its primary key. Returns (nil, nil) when the
// library does not exist.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Library, error) {
	var lib models.Library
	err := r.db.WithContext(ctx).First(&lib, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

// List returns all libraries ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Library, error) {
	var libs []models.Library
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&libs).Error; err != nil {
		return nil, err
	}
	return libs, nil
}

// Create inserts a new library row.
func (r *Repository) Create(ctx context.Context, lib *models.Library) (*models.Library, error) {
	if err := r.db.WithContext(ctx).Create(lib).Error; err != nil {
		return nil, err
	}
	return lib, nil
}
