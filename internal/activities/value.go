package activities

import (
	"context"
	"strings"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

const entityType = "Activity"

// ActivityValue is the immutable payload of an activity version. The optional
// grouping term links the activity to controlled terminology.
type ActivityValue struct {
	Name            string  `json:"name"`
	Definition      string  `json:"definition"`
	Abbreviation    string  `json:"abbreviation"`
	GroupingTermUID *string `json:"grouping_term_uid,omitempty"`
}

// Equal reports full structural equality, used to detect no-op edits.
func (v ActivityValue) Equal(other ActivityValue) bool {
	if v.Name != other.Name || v.Definition != other.Definition || v.Abbreviation != other.Abbreviation {
		return false
	}
	if (v.GroupingTermUID == nil) != (other.GroupingTermUID == nil) {
		return false
	}
	return v.GroupingTermUID == nil || *v.GroupingTermUID == *other.GroupingTermUID
}

// ExistenceOracle is the persistence callback the validator probes. The
// grouping term is a cross-family existence check against terms.
type ExistenceOracle interface {
	NameExists(ctx context.Context, name string) (bool, error)
	TermExists(ctx context.Context, termUID string) (bool, error)
}

// PayloadValidator enforces activity payload rules in a fixed order:
// required fields, name uniqueness, grouping term reference. Values the item
// already owns are exempt from the uniqueness probe.
type PayloadValidator struct {
	Oracle ExistenceOracle
}

// Validate implements versioning.Validator.
func (pv PayloadValidator) Validate(ctx context.Context, candidate ActivityValue, previous *ActivityValue) error {
	if strings.TrimSpace(candidate.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if previous == nil || candidate.Name != previous.Name {
		exists, err := pv.Oracle.NameExists(ctx, candidate.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe activity name")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "name", candidate.Name)
		}
	}

	if candidate.GroupingTermUID != nil {
		unchanged := previous != nil && previous.GroupingTermUID != nil &&
			*previous.GroupingTermUID == *candidate.GroupingTermUID
		if !unchanged {
			exists, err := pv.Oracle.TermExists(ctx, *candidate.GroupingTermUID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe grouping term")
			}
			if !exists {
				return versioning.ErrDoesNotExist("Term", *candidate.GroupingTermUID)
			}
		}
	}

	return nil
}
