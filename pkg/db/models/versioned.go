package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
)

// VersionedItem holds the columns shared by every aggregate parent row: the
// library reference plus the denormalized metadata of the latest version.
// Status-scoped lookups and uniqueness probes hit these columns; the full
// history lives in the per-family *_versions table.
type VersionedItem struct {
	UID          string           `gorm:"column:uid;primaryKey"`
	LibraryName  string           `gorm:"column:library_name;not null;index"`
	Status       enums.ItemStatus `gorm:"column:status;not null"`
	MajorVersion uint             `gorm:"column:major_version;not null"`
	MinorVersion uint             `gorm:"column:minor_version;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// VersionRecord holds the metadata columns shared by every *_versions row.
// A row is "open" while end_date is null; each transition closes the open row
// and appends a new one.
type VersionRecord struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status            enums.ItemStatus `gorm:"column:status;not null"`
	MajorVersion      uint             `gorm:"column:major_version;not null"`
	MinorVersion      uint             `gorm:"column:minor_version;not null"`
	AuthorID          string           `gorm:"column:author_id;not null"`
	StartDate         time.Time        `gorm:"column:start_date;not null"`
	EndDate           *time.Time       `gorm:"column:end_date"`
	ChangeDescription string           `gorm:"column:change_description;not null"`
}
