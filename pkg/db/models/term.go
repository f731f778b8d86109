package models

import "github.com/lib/pq"

// Term is the parent row of a controlled-terminology term aggregate.
type Term struct {
	VersionedItem
	CodelistUID     string `gorm:"column:codelist_uid;not null;index"`
	Name            string `gorm:"column:name;not null;index"`
	SubmissionValue string `gorm:"column:submission_value;not null;index"`
}

// TableName returns the GORM table name.
func (Term) TableName() string { return "terms" }

// TermVersion is one immutable version snapshot of a term.
type TermVersion struct {
	VersionRecord
	TermUID         string         `gorm:"column:term_uid;not null;index"`
	CodelistUID     string         `gorm:"column:codelist_uid;not null"`
	Name            string         `gorm:"column:name;not null"`
	SubmissionValue string         `gorm:"column:submission_value;not null"`
	PreferredTerm   string         `gorm:"column:preferred_term"`
	Definition      string         `gorm:"column:definition"`
	Synonyms        pq.StringArray `gorm:"column:synonyms;type:text[]"`
}

// TableName returns the GORM table name.
func (TermVersion) TableName() string { return "term_versions" }
