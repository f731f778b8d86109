package terms

import (
	"time"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
)

// TermDTO is the outward shape of a term at one version.
type TermDTO struct {
	UID               string     `json:"uid"`
	LibraryName       string     `json:"library_name"`
	CodelistUID       string     `json:"codelist_uid"`
	Name              string     `json:"name"`
	SubmissionValue   string     `json:"submission_value"`
	PreferredTerm     string     `json:"preferred_term,omitempty"`
	Definition        string     `json:"definition,omitempty"`
	Synonyms          []string   `json:"synonyms,omitempty"`
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	AuthorID          string     `json:"author_id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	ChangeDescription string     `json:"change_description"`
}

// NewTermDTO renders an aggregate's current state.
func NewTermDTO(agg *versioning.Aggregate[TermValue]) *TermDTO {
	meta := agg.Metadata()
	value := agg.Value()
	return &TermDTO{
		UID:               agg.UID(),
		LibraryName:       agg.Library().Name(),
		CodelistUID:       value.CodelistUID,
		Name:              value.Name,
		SubmissionValue:   value.SubmissionValue,
		PreferredTerm:     value.PreferredTerm,
		Definition:        value.Definition,
		Synonyms:          value.Synonyms,
		Status:            meta.Status.String(),
		Version:           meta.Version(),
		AuthorID:          meta.AuthorID,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		ChangeDescription: meta.ChangeDescription,
	}
}

// NewVersionDTO renders one historical version row.
func NewVersionDTO(libraryName string, row models.TermVersion) TermDTO {
	return TermDTO{
		UID:               row.TermUID,
		LibraryName:       libraryName,
		CodelistUID:       row.CodelistUID,
		Name:              row.Name,
		SubmissionValue:   row.SubmissionValue,
		PreferredTerm:     row.PreferredTerm,
		Definition:        row.Definition,
		Synonyms:          row.Synonyms,
		Status:            row.Status.String(),
		Version:           versioning.ItemMetadata{MajorVersion: row.MajorVersion, MinorVersion: row.MinorVersion}.Version(),
		AuthorID:          row.AuthorID,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		ChangeDescription: row.ChangeDescription,
	}
}
