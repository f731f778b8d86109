package forms

import (
	"context"
	"strings"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

const entityType = "Form"

// FormValue is the immutable payload of an ODM form version.
type FormValue struct {
	Name        string `json:"name"`
	OID         string `json:"oid"`
	Repeating   bool   `json:"repeating"`
	Description string `json:"description"`
}

// Equal reports full structural equality, used to detect no-op edits.
func (v FormValue) Equal(other FormValue) bool {
	return v == other
}

// ExistenceOracle is the persistence callback the validator probes.
type ExistenceOracle interface {
	OIDExists(ctx context.Context, oid string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
}

// PayloadValidator enforces form payload rules in a fixed order: required
// fields, OID uniqueness, name uniqueness. Values the item already owns are
// exempt from the uniqueness probes.
type PayloadValidator struct {
	Oracle ExistenceOracle
}

// Validate implements versioning.Validator.
func (pv PayloadValidator) Validate(ctx context.Context, candidate FormValue, previous *FormValue) error {
	if strings.TrimSpace(candidate.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(candidate.OID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "oid is required")
	}

	if previous == nil || candidate.OID != previous.OID {
		exists, err := pv.Oracle.OIDExists(ctx, candidate.OID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe form oid")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "OID", candidate.OID)
		}
	}

	if previous == nil || candidate.Name != previous.Name {
		exists, err := pv.Oracle.NameExists(ctx, candidate.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: probe form name")
		}
		if exists {
			return versioning.ErrAlreadyExists(entityType, "name", candidate.Name)
		}
	}

	return nil
}
