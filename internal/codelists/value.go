package codelists

import (
	"context"
	"strings"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

const entityType = "Codelist"

// CodelistValue is the immutable payload of a codelist version. Edits replace
// it wholesale.
type CodelistValue struct {
	Name             string `json:"name"`
	SubmissionValue  string `json:"submission_value"`
	NCIPreferredName string `json:"nci_preferred_name"`
	Definition       string `json:"definition"`
	Extensible       bool   `json:"extensible"`
}

// Equal reports full structural equality, used to detect no-op edits.
func (v CodelistValue) Equal(other CodelistValue) bool {
	return v == other
}

// ExistenceOracle is the persistence callback the validator probes for
// uniqueness. The repository implements it; tests supply fakes.
type ExistenceOracle interface {
	NameExists(ctx context.Context, name string) (bool, error)
	SubmissionValueExists(ctx context.Context, value string) (bool, error)
}

// PayloadValidator enforces codelist payload rules. Checks run in a fixed
// order and stop at the first failure: required fields, then name
// uniqueness, then submission value uniqueness. Values the item already
// owns are exempt from the uniqueness probes.
type PayloadValidator struct {
	Oracle ExistenceOracle
}

// Validate implements versioning.Validator.
func (pv PayloadValidator) Validate(ctx context.Context, candidate CodelistValue, previous *CodelistValue) error {
	if strings.TrimSpace(candidate.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(candidate.SubmissionValue) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission_value is required")
	}

	if previous == nil || candidate.Name != previous.Name {
		exists, err := pv.Oracle.NameExists(ctx, candidate.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe codelist name")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "name", candidate.Name)
		}
	}

	if previous == nil || candidate.SubmissionValue != previous.SubmissionValue {
		exists, err := pv.Oracle.SubmissionValueExists(ctx, candidate.SubmissionValue)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe codelist submission value")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "submission value", candidate.SubmissionValue)
		}
	}

	return nil
}
