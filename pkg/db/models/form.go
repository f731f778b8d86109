package models

// Form is the parent row of an ODM form artifact aggregate. Forms are
// master-model artifacts: their major version is supplied externally.
type Form struct {
	VersionedItem
	Name string `gorm:"column:name;not null;index"`
	OID  string `gorm:"column:oid;not null;index"`
}

// TableName returns the GORM table name.
func (Form) TableName() string { return "forms" }

// FormVersion is one immutable version snapshot of a form.
type FormVersion struct {
	VersionRecord
	FormUID     string `gorm:"column:form_uid;not null;index"`
	Name        string `gorm:"column:name;not null"`
	OID         string `gorm:"column:oid;not null"`
	Repeating   bool   `gorm:"column:repeating;not null;default:false"`
	Description string `gorm:"column:description"`
}

// TableName returns the GORM table name.
func (FormVersion) TableName() string { return "form_versions" }
