package activities

import (
	"time"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
)

// ActivityDTO is the outward shape of an activity at one version.
type ActivityDTO struct {
	UID               string     `json:"uid"`
	LibraryName       string     `json:"library_name"`
	Name              string     `json:"name"`
	Definition        string     `json:"definition,omitempty"`
	Abbreviation      string     `json:"abbreviation,omitempty"`
	GroupingTermUID   *string    `json:"grouping_term_uid,omitempty"`
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	AuthorID          string     `json:"author_id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	ChangeDescription string     `json:"change_description"`
}

// NewActivityDTO renders an aggregate's current state.
func NewActivityDTO(agg *versioning.Aggregate[ActivityValue]) *ActivityDTO {
	meta := agg.Metadata()
	value := agg.Value()
	return &ActivityDTO{
		UID:               agg.UID(),
		LibraryName:       agg.Library().Name(),
		Name:              value.Name,
		Definition:        value.Definition,
		Abbreviation:      value.Abbreviation,
		GroupingTermUID:   value.GroupingTermUID,
		Status:            meta.Status.String(),
		Version:           meta.Version(),
		AuthorID:          meta.AuthorID,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		ChangeDescription: meta.ChangeDescription,
	}
}

// NewVersionDTO renders one historical version row.
func NewVersionDTO(libraryName string, row models.ActivityVersion) ActivityDTO {
	return ActivityDTO{
		UID:               row.ActivityUID,
		LibraryName:       libraryName,
		Name:              row.Name,
		Definition:        row.Definition,
		Abbreviation:      row.Abbreviation,
		GroupingTermUID:   row.GroupingTermUID,
		Status:            row.Status.String(),
		Version:           versioning.ItemMetadata{MajorVersion: row.MajorVersion, MinorVersion: row.MinorVersion}.Version(),
		AuthorID:          row.AuthorID,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		ChangeDescription: row.ChangeDescription,
	}
}
