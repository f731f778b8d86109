package forms

import (
	"context"
	"testing"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

type fakeOracle struct {
	oids  map[string]bool
	names map[string]bool
}

func (f *fakeOracle) OIDExists(_ context.Context, oid string) (bool, error) {
	return f.oids[oid], nil
}

func (f *fakeOracle) NameExists(_ context.Context, name string) (bool, error) {
	return f.names[name], nil
}

func TestFormValidatorOIDUniqueness(t *testing.T) {
	oracle := &fakeOracle{oids: map[string]bool{"F.VS": true}}
	v := PayloadValidator{Oracle: oracle}

	err := v.Validate(context.Background(), FormValue{Name: "Vital Signs", OID: "F.VS"}, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "CONFLICT: Form with OID 'F.VS' already exists." {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	// own OID is exempt on edit
	previous := FormValue{Name: "Vital Signs", OID: "F.VS"}
	candidate := FormValue{Name: "Vital Signs", OID: "F.VS", Repeating: true}
	if err := v.Validate(context.Background(), candidate, &previous); err != nil {
		t.Fatalf("expected own-OID exemption, got %v", err)
	}
}

func TestFormValidatorRequiredFields(t *testing.T) {
	v := PayloadValidator{Oracle: &fakeOracle{}}

	if err := v.Validate(context.Background(), FormValue{OID: "F.VS"}, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if err := v.Validate(context.Background(), FormValue{Name: "Vital Signs"}, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing oid, got %v", err)
	}
}

// Forms pin the externally supplied major version across the whole
// lifecycle: drafts, approvals, and checkouts all stay at <major>.0.
func TestFormPinnedMajorLifecycle(t *testing.T) {
	policy := versioning.PinnedMajorVersioning{Major: 3}

	meta := versioning.InitialItemMetadata("author")
	meta.MajorVersion, meta.MinorVersion = policy.NextDraft(meta)
	if meta.Version() != "3.0" {
		t.Fatalf("expected pinned create at 3.0, got %s", meta.Version())
	}

	approved, err := meta.Approve(policy, "author")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Version() != "3.0" {
		t.Fatalf("expected approval to stay at 3.0, got %s", approved.Version())
	}

	checkout, err := approved.NewDraftVersion(policy, "author", "next round")
	if err != nil {
		t.Fatalf("NewDraftVersion: %v", err)
	}
	if checkout.Version() != "3.0" {
		t.Fatalf("expected checkout to stay at 3.0, got %s", checkout.Version())
	}
}
