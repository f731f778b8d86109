package forms

import (
	"time"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
)

// FormDTO is the outward shape of a form at one version.
type FormDTO struct {
	UID               string     `json:"uid"`
	LibraryName       string     `json:"library_name"`
	Name              string     `json:"name"`
	OID               string     `json:"oid"`
	Repeating         bool       `json:"repeating"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	AuthorID          string     `json:"author_id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	ChangeDescription string     `json:"change_description"`
}

// NewFormDTO renders an aggregate's current state.
func NewFormDTO(agg *versioning.Aggregate[FormValue]) *FormDTO {
	meta := agg.Metadata()
	value := agg.Value()
	return &FormDTO{
		UID:               agg.UID(),
		LibraryName:       agg.Library().Name(),
		Name:              value.Name,
		OID:               value.OID,
		Repeating:         value.Repeating,
		Description:       value.Description,
		Status:            meta.Status.String(),
		Version:           meta.Version(),
		AuthorID:          meta.AuthorID,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		ChangeDescription: meta.ChangeDescription,
	}
}

// NewVersionDTO renders one historical version row.
func NewVersionDTO(libraryName string, row models.FormVersion) FormDTO {
	return FormDTO{
		UID:               row.FormUID,
		LibraryName:       libraryName,
		Name:              row.Name,
		OID:               row.OID,
		Repeating:         row.Repeating,
		Description:       row.Description,
		Status:            row.Status.String(),
		Version:           versioning.ItemMetadata{MajorVersion: row.MajorVersion, MinorVersion: row.MinorVersion}.Version(),
		AuthorID:          row.AuthorID,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		ChangeDescription: row.ChangeDescription,
	}
}
