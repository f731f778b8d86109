package models

import "time"

// Library is a named grouping controlling whether its items may be created or
// edited (e.g. "Sponsor" is editable, "CDISC" is frozen).
type Library struct {
	Name       string    `gorm:"column:name;primaryKey"`
	IsEditable bool      `gorm:"column:is_editable;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (Library) TableName() string { return "libraries" }
