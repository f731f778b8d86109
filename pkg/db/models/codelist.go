package models

// Codelist is the parent row of a controlled-terminology codelist aggregate.
// Name and SubmissionValue are denormalized from the latest version so the
// uniqueness oracle can probe them with a single indexed query.
type Codelist struct {
	VersionedItem
	Name            string `gorm:"column:name;not null;index"`
	SubmissionValue string `gorm:"column:submission_value;not null;index"`
}

// TableName returns the GORM table name.
func (Codelist) TableName() string { return "codelists" }

// CodelistVersion is one immutable version snapshot of a codelist.
type CodelistVersion struct {
	VersionRecord
	CodelistUID      string `gorm:"column:codelist_uid;not null;index"`
	Name             string `gorm:"column:name;not null"`
	SubmissionValue  string `gorm:"column:submission_value;not null"`
	NCIPreferredName string `gorm:"column:nci_preferred_name"`
	Definition       string `gorm:"column:definition"`
	Extensible       bool   `gorm:"column:extensible;not null;default:false"`
}

// TableName returns the GORM table name.
func (CodelistVersion) TableName() string { return "codelist_versions" }
