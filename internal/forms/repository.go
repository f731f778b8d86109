package forms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinmeta/cmdr-backend/pkg/db/models"
	"github.com/clinmeta/cmdr-backend/pkg/pagination"
)

const uidPrefix = "OdmForm_"

// Repository persists form aggregates.
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

// GenerateUID mints a new form UID.
func (r *Repository) GenerateUID(_ context.Context) (string, error) {
	return uidPrefix + uuid.NewString(), nil
}

// FindParent loads the parent row, optionally locking it. Returns (nil, nil)
// when absent.
func (r *Repository) FindParent(ctx context.Context, uid string, forUpdate bool) (*models.Form, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var parent models.Form
	err := q.First(&parent, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// FindOpenVersion loads the single version row with no end date.
func (r *Repository) FindOpenVersion(ctx context.Context, uid string) (*models.FormVersion, error) {
	var version models.FormVersion
	err := r.db.WithContext(ctx).
		First(&version, "form_uid = ? AND end_date IS NULL", uid).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// FindVersion loads a specific historical version. Returns (nil, nil) when
// that version was never recorded.
func (r *Repository) FindVersion(ctx context.Context, uid string, major, minor uint) (*models.FormVersion, error) {
	var version models.FormVersion
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		First(&version, "form_uid = ? AND major_version = ? AND minor_version = ?", uid, major, minor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// FindLatestByStatus loads the most recent version row carrying the given
// status. Returns (nil, nil) when the item never held that status.
func (r *Repository) FindLatestByStatus(ctx context.Context, uid string, status string) (*models.FormVersion, error) {
	var version models.FormVersion
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		First(&version, "form_uid = ? AND status = ?", uid, status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// ListVersions returns the full history, newest first.
func (r *Repository) ListVersions(ctx context.Context, uid string) ([]models.FormVersion, error) {
	var versions []models.FormVersion
	err := r.db.WithContext(ctx).
		Where("form_uid = ?", uid).
		Order("start_date DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// ListFilter narrows the paginated listing.
type ListFilter struct {
	LibraryName string
	Status      string
}

// List returns a page of parent rows plus the next-page cursor.
func (r *Repository) List(ctx context.Context, params pagination.Params, filter ListFilter) ([]models.Form, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).Model(&models.Form{})
	if filter.LibraryName != "" {
		q = q.Where("library_name = ?", filter.LibraryName)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where("(created_at, uid) > (?, ?)", cursor.CreatedAt, cursor.UID)
	}

	var rows []models.Form
	if err := q.Order("created_at ASC, uid ASC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, UID: last.UID})
	}
	return rows, next, nil
}

// Insert persists a freshly created aggregate.
func (r *Repository) Insert(ctx context.Context, parent *models.Form, version *models.FormVersion) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Create(parent).Error; err != nil {
		return err
	}
	return tx.Create(version).Error
}

// SaveTransition closes the open version row and appends the next one,
// refreshing the parent's denormalized columns.
func (r *Repository) SaveTransition(ctx context.Context, parent *models.Form, openVersionID uuid.UUID, next *models.FormVersion) error {
	tx := r.db.WithContext(ctx)

	now := time.Now().UTC()
	res := tx.Model(&models.FormVersion{}).
		Where("id = ? AND end_date IS NULL", openVersionID).
		Update("end_date", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := tx.Create(next).Error; err != nil {
		return err
	}

	return tx.Model(&models.Form{}).
		Where("uid = ?", parent.UID).
		Updates(map[string]any{
			"status":        parent.Status,
			"major_version": parent.MajorVersion,
			"minor_version": parent.MinorVersion,
			"name":          parent.Name,
			"oid":           parent.OID,
		}).Error
}

// OIDExists implements the validator's existence oracle.
func (r *Repository) OIDExists(ctx context.Context, oid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("oid = ?", oid).
		Count(&count).Error
	return count > 0, err
}

// NameExists implements the validator's existence oracle.
func (r *Repository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}
