package versioning

import (
	"context"
	"testing"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

type widgetValue struct {
	Name string
	Code string
}

func (v widgetValue) Equal(other widgetValue) bool { return v == other }

// fakeValidator emulates an existence oracle: names listed in existing are
// reported as taken, with the previous-value exemption applied the way every
// real validator must.
type fakeValidator struct {
	existing map[string]bool
	err      error
	calls    int
}

func (f *fakeValidator) Validate(_ context.Context, candidate widgetValue, previous *widgetValue) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.existing[candidate.Name] && (previous == nil || previous.Name != candidate.Name) {
		return ErrAlreadyExists("Widget", "Name", candidate.Name)
	}
	return nil
}

func editableLibrary() LibraryRef {
	return NewLibraryRef("Sponsor", func() bool { return true })
}

func frozenLibrary() LibraryRef {
	return NewLibraryRef("CDISC", func() bool { return false })
}

func widgetCaps(v Validator[widgetValue]) Capabilities[widgetValue] {
	return Capabilities[widgetValue]{
		EntityType:          "Widget",
		Validator:           v,
		SoftDeleteSupported: true,
	}
}

func mustCreateWidget(t *testing.T, caps Capabilities[widgetValue], library LibraryRef) *Aggregate[widgetValue] {
	t.Helper()
	agg, err := New(context.Background(), caps, "U1", widgetValue{Name: "OldName", Code: "C1"}, library, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return agg
}

func TestNewAggregateStartsAsDraftZeroOne(t *testing.T) {
	agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())

	meta := agg.Metadata()
	if meta.Status != enums.ItemStatusDraft || meta.Version() != "0.1" {
		t.Fatalf("expected draft 0.1, got %s %s", meta.Status, meta.Version())
	}
	if agg.ClosureData() != nil {
		t.Fatal("fresh aggregate must have nil closure data")
	}
}

func TestNewAggregateRejectedInFrozenLibrary(t *testing.T) {
	_, err := New(context.Background(), widgetCaps(&fakeValidator{}), "U1",
		widgetValue{Name: "N"}, frozenLibrary(), nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if err.Error() != "BUSINESS_RULE_VIOLATION: Library 'CDISC' doesn't allow creation of objects." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNewAggregateValidationFailsFast(t *testing.T) {
	validator := &fakeValidator{existing: map[string]bool{"Taken": true}}
	_, err := New(context.Background(), widgetCaps(validator), "U1",
		widgetValue{Name: "Taken"}, editableLibrary(), nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestNewAggregateMintsUID(t *testing.T) {
	agg, err := New(context.Background(), widgetCaps(&fakeValidator{}), "U1",
		widgetValue{Name: "N"}, editableLibrary(),
		func(context.Context) (string, error) { return "Widget_000001", nil })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if agg.UID() != "Widget_000001" {
		t.Fatalf("expected minted UID, got %q", agg.UID())
	}
}

func TestLifecycleEndToEnd(t *testing.T) {
	validator := &fakeValidator{}
	agg := mustCreateWidget(t, widgetCaps(validator), editableLibrary())

	// create -> draft 0.1
	if v := agg.Metadata().Version(); v != "0.1" {
		t.Fatalf("after create: %s", v)
	}

	// approve -> final 1.0
	if err := agg.Approve("U1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if m := agg.Metadata(); m.Status != enums.ItemStatusFinal || m.Version() != "1.0" {
		t.Fatalf("after approve: %s %s", m.Status, m.Version())
	}

	// checkout -> draft 1.1, payload untouched
	if err := agg.CreateNewVersion("U1", "editing again"); err != nil {
		t.Fatalf("CreateNewVersion: %v", err)
	}
	if m := agg.Metadata(); m.Status != enums.ItemStatusDraft || m.Version() != "1.1" {
		t.Fatalf("after checkout: %s %s", m.Status, m.Version())
	}
	if agg.Value().Name != "OldName" {
		t.Fatal("checkout must not replace the payload")
	}

	// idempotent edit -> no transition
	changed, err := agg.EditDraft(context.Background(), "U1", "noop", agg.Value())
	if err != nil {
		t.Fatalf("EditDraft noop: %v", err)
	}
	if changed {
		t.Fatal("identical payload must be a no-op")
	}
	if v := agg.Metadata().Version(); v != "1.1" {
		t.Fatalf("version moved on no-op edit: %s", v)
	}

	// real edit -> draft 1.2
	changed, err = agg.EditDraft(context.Background(), "U2", "renamed", widgetValue{Name: "NewName", Code: "C1"})
	if err != nil {
		t.Fatalf("EditDraft: %v", err)
	}
	if !changed {
		t.Fatal("expected changed=true")
	}
	if m := agg.Metadata(); m.Version() != "1.2" || m.AuthorID != "U2" || m.ChangeDescription != "renamed" {
		t.Fatalf("after edit: %+v", m)
	}
	if agg.Value().Name != "NewName" {
		t.Fatal("payload not replaced")
	}
}

func TestEditDraftSelfMatchExemption(t *testing.T) {
	// The oracle reports OldName as existing (it is this item's own name);
	// editing other fields while keeping the name must not conflict.
	validator := &fakeValidator{existing: map[string]bool{"OldName": true}}
	agg := mustCreateWidget(t, widgetCaps(validator), editableLibrary())

	changed, err := agg.EditDraft(context.Background(), "U1", "code change",
		widgetValue{Name: "OldName", Code: "C2"})
	if err != nil {
		t.Fatalf("self-match edit must pass, got %v", err)
	}
	if !changed {
		t.Fatal("expected changed=true")
	}
}

func TestEditDraftCollisionWithDifferentItem(t *testing.T) {
	validator := &fakeValidator{existing: map[string]bool{"NewName": true}}
	agg := mustCreateWidget(t, widgetCaps(validator), editableLibrary())
	before := agg.Metadata()

	_, err := agg.EditDraft(context.Background(), "U1", "rename",
		widgetValue{Name: "NewName", Code: "C1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// validate-then-mutate: a failed validation leaves the aggregate untouched.
	if agg.Metadata() != before {
		t.Fatal("metadata mutated despite validation failure")
	}
	if agg.Value().Name != "OldName" {
		t.Fatal("payload mutated despite validation failure")
	}
}

func TestEditDraftRejectedOutsideDraft(t *testing.T) {
	agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())
	if err := agg.Approve("U1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	_, err := agg.EditDraft(context.Background(), "U1", "edit", widgetValue{Name: "X"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
		t.Fatalf("expected business rule error, got %v", err)
	}
}

func TestEditWhileFinalCapability(t *testing.T) {
	caps := widgetCaps(&fakeValidator{})
	caps.EditAllowedWhileFinal = true
	agg := mustCreateWidget(t, caps, editableLibrary())
	if err := agg.Approve("U1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	changed, err := agg.EditDraft(context.Background(), "U1", "hotfix", widgetValue{Name: "Fixed", Code: "C1"})
	if err != nil || !changed {
		t.Fatalf("expected edit while final to pass, got changed=%v err=%v", changed, err)
	}
}

func TestFrozenLibraryBlocksMutationsByDefault(t *testing.T) {
	validator := &fakeValidator{}
	agg := Rehydrate(widgetCaps(validator), "Widget_1", frozenLibrary(),
		ItemMetadata{Status: enums.ItemStatusDraft, MajorVersion: 0, MinorVersion: 1},
		widgetValue{Name: "N"}, nil)

	if _, err := agg.EditDraft(context.Background(), "U1", "edit", widgetValue{Name: "M"}); err == nil {
		t.Fatal("expected frozen library to block edit")
	}
	if err := agg.Approve("U1"); err == nil {
		t.Fatal("expected frozen library to block approve")
	}
}

func TestFrozenLibraryEditExemption(t *testing.T) {
	caps := widgetCaps(&fakeValidator{})
	caps.EditAllowedInFrozenLibrary = true
	agg := Rehydrate(caps, "Widget_1", frozenLibrary(),
		ItemMetadata{Status: enums.ItemStatusDraft, MajorVersion: 0, MinorVersion: 1},
		widgetValue{Name: "N"}, nil)

	changed, err := agg.EditDraft(context.Background(), "U1", "sponsor rename", widgetValue{Name: "M"})
	if err != nil || !changed {
		t.Fatalf("expected exempt edit to pass, got changed=%v err=%v", changed, err)
	}
}

func TestReactivateIgnoresLibraryEditability(t *testing.T) {
	agg := Rehydrate(widgetCaps(&fakeValidator{}), "Widget_1", frozenLibrary(),
		ItemMetadata{Status: enums.ItemStatusRetired, MajorVersion: 1}, widgetValue{Name: "N"}, nil)

	if err := agg.Reactivate("U1"); err != nil {
		t.Fatalf("reactivate must not be gated on editability, got %v", err)
	}
	if agg.Metadata().Status != enums.ItemStatusFinal {
		t.Fatalf("expected final, got %s", agg.Metadata().Status)
	}
}

func TestFrozenLibraryGatesRestoreCapability(t *testing.T) {
	caps := widgetCaps(&fakeValidator{})
	caps.FrozenLibraryGatesRestore = true
	agg := Rehydrate(caps, "Widget_1", frozenLibrary(),
		ItemMetadata{Status: enums.ItemStatusRetired, MajorVersion: 1}, widgetValue{Name: "N"}, nil)

	if err := agg.Reactivate("U1"); !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
		t.Fatalf("expected gated reactivate, got %v", err)
	}
}

func TestCreateNewVersionRequiresFinal(t *testing.T) {
	agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())
	if err := agg.CreateNewVersion("U1", "checkout"); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict from draft, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	t.Run("allowedForUnapprovedDraft", func(t *testing.T) {
		agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())
		if err := agg.SoftDelete(); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}
	})

	t.Run("rejectedOnceApproved", func(t *testing.T) {
		agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())
		if err := agg.Approve("U1"); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if err := agg.SoftDelete(); !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("rejectedAfterReapprovalCheckout", func(t *testing.T) {
		agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())
		if err := agg.Approve("U1"); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if err := agg.CreateNewVersion("U1", "checkout"); err != nil {
			t.Fatalf("CreateNewVersion: %v", err)
		}
		// Draft again, but major > 0: the item was approved once.
		if err := agg.SoftDelete(); err == nil {
			t.Fatal("expected delete rejection for ever-approved item")
		}
	})

	t.Run("familyWithoutDeleteSupport", func(t *testing.T) {
		caps := widgetCaps(&fakeValidator{})
		caps.SoftDeleteSupported = false
		agg := mustCreateWidget(t, caps, editableLibrary())
		if err := agg.SoftDelete(); !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})
}

func TestMajorVersionMonotonic(t *testing.T) {
	agg := mustCreateWidget(t, widgetCaps(&fakeValidator{}), editableLibrary())

	var lastMajor uint
	for i := 0; i < 5; i++ {
		if err := agg.Approve("U1"); err != nil {
			t.Fatalf("Approve #%d: %v", i, err)
		}
		m := agg.Metadata()
		if m.MajorVersion < lastMajor {
			t.Fatalf("major version regressed: %d -> %d", lastMajor, m.MajorVersion)
		}
		if m.MinorVersion != 0 {
			t.Fatalf("minor must reset on approval, got %s", m.Version())
		}
		lastMajor = m.MajorVersion
		if err := agg.CreateNewVersion("U1", "next round"); err != nil {
			t.Fatalf("CreateNewVersion #%d: %v", i, err)
		}
	}
}
