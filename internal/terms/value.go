package terms

import (
	"context"
	"strings"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

const entityType = "Term"

// TermValue is the immutable payload of a term version. The owning codelist
// is fixed at creation and travels with the payload.
type TermValue struct {
	CodelistUID     string   `json:"codelist_uid"`
	Name            string   `json:"name"`
	SubmissionValue string   `json:"submission_value"`
	PreferredTerm   string   `json:"preferred_term"`
	Definition      string   `json:"definition"`
	Synonyms        []string `json:"synonyms"`
}

// Equal reports full structural equality, used to detect no-op edits.
func (v TermValue) Equal(other TermValue) bool {
	if v.CodelistUID != other.CodelistUID ||
		v.Name != other.Name ||
		v.SubmissionValue != other.SubmissionValue ||
		v.PreferredTerm != other.PreferredTerm ||
		v.Definition != other.Definition {
		return false
	}
	if len(v.Synonyms) != len(other.Synonyms) {
		return false
	}
	for i := range v.Synonyms {
		if v.Synonyms[i] != other.Synonyms[i] {
			return false
		}
	}
	return true
}

// ExistenceOracle is the persistence callback the validator probes.
// Uniqueness is scoped to the owning codelist; the codelist reference is a
// cross-family existence check.
type ExistenceOracle interface {
	CodelistExists(ctx context.Context, codelistUID string) (bool, error)
	NameExists(ctx context.Context, codelistUID, name string) (bool, error)
	SubmissionValueExists(ctx context.Context, codelistUID, value string) (bool, error)
}

// PayloadValidator enforces term payload rules in a fixed order: required
// fields, codelist reference, name uniqueness, submission value uniqueness.
// Values the item already owns are exempt from the uniqueness probes.
type PayloadValidator struct {
	Oracle ExistenceOracle
}

// Validate implements versioning.Validator.
func (pv PayloadValidator) Validate(ctx context.Context, candidate TermValue, previous *TermValue) error {
	if strings.TrimSpace(candidate.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(candidate.SubmissionValue) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission_value is required")
	}
	if strings.TrimSpace(candidate.CodelistUID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "codelist_uid is required")
	}

	if previous == nil || candidate.CodelistUID != previous.CodelistUID {
		exists, err := pv.Oracle.CodelistExists(ctx, candidate.CodelistUID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe codelist reference")
		}
		if !exists {
			return versioning.ErrDoesNotExist("Codelist", candidate.CodelistUID)
		}
	}

	if previous == nil || candidate.Name != previous.Name {
		exists, err := pv.Oracle.NameExists(ctx, candidate.CodelistUID, candidate.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe term name")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "name", candidate.Name)
		}
	}

	if previous == nil || candidate.SubmissionValue != previous.SubmissionValue {
		exists, err := pv.Oracle.SubmissionValueExists(ctx, candidate.CodelistUID, candidate.SubmissionValue)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe term submission value")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "submission value", candidate.SubmissionValue)
		}
	}

	return nil
}
