package codelists

import (
	"time"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
)

// CodelistDTO is the outward shape of a codelist at one version.
type CodelistDTO struct {
	UID               string     `json:"uid"`
	LibraryName       string     `json:"library_name"`
	Name              string     `json:"name"`
	SubmissionValue   string     `json:"submission_value"`
	NCIPreferredName  string     `json:"nci_preferred_name,omitempty"`
	Definition        string     `json:"definition,omitempty"`
	Extensible        bool       `json:"extensible"`
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	AuthorID          string     `json:"author_id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	ChangeDescription string     `json:"change_description"`
}

// NewCodelistDTO renders an aggregate's current state.
func NewCodelistDTO(agg *versioning.Aggregate[CodelistValue]) *CodelistDTO {
	meta := agg.Metadata()
	value := agg.Value()
	return &CodelistDTO{
		UID:               agg.UID(),
		LibraryName:       agg.Library().Name(),
		Name:              value.Name,
		SubmissionValue:   value.SubmissionValue,
		NCIPreferredName:  value.NCIPreferredName,
		Definition:        value.Definition,
		Extensible:        value.Extensible,
		Status:            meta.Status.String(),
		Version:           meta.Version(),
		AuthorID:          meta.AuthorID,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		ChangeDescription: meta.ChangeDescription,
	}
}

// NewVersionDTO renders one historical version row.
func NewVersionDTO(libraryName string, row models.CodelistVersion) CodelistDTO {
	return CodelistDTO{
		UID:               row.CodelistUID,
		LibraryName:       libraryName,
		Name:              row.Name,
		SubmissionValue:   row.SubmissionValue,
		NCIPreferredName:  row.NCIPreferredName,
		Definition:        row.Definition,
		Extensible:        row.Extensible,
		Status:            row.Status.String(),
		Version:           versioning.ItemMetadata{MajorVersion: row.MajorVersion, MinorVersion: row.MinorVersion}.Version(),
		AuthorID:          row.AuthorID,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		ChangeDescription: row.ChangeDescription,
	}
}
