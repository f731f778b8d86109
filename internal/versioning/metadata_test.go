package versioning

import (
	"fmt"
	"testing"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

func TestInitialItemMetadata(t *testing.T) {
	meta := InitialItemMetadata("U1")

	if meta.Status != enums.ItemStatusDraft {
		t.Fatalf("expected draft status, got %s", meta.Status)
	}
	if meta.MajorVersion != 0 || meta.MinorVersion != 0 {
		t.Fatalf("expected 0.0, got %s", meta.Version())
	}
	if meta.AuthorID != "U1" {
		t.Fatalf("expected author U1, got %s", meta.AuthorID)
	}
	if meta.EndDate != nil {
		t.Fatal("expected nil end date")
	}
	if meta.ChangeDescription != "Initial version" {
		t.Fatalf("unexpected change description %q", meta.ChangeDescription)
	}
}

func TestVersionRendering(t *testing.T) {
	cases := []struct {
		major, minor uint
		want         string
	}{
		{0, 0, "0.0"},
		{0, 1, "0.1"},
		{1, 0, "1.0"},
		{1, 10, "1.10"},
	}
	for _, tc := range cases {
		meta := ItemMetadata{MajorVersion: tc.major, MinorVersion: tc.minor}
		if got := meta.Version(); got != tc.want {
			t.Fatalf("Version(%d,%d) = %q, want %q", tc.major, tc.minor, got, tc.want)
		}
	}
}

func TestParseVersionRoundTrip(t *testing.T) {
	for _, pair := range [][2]uint{{0, 0}, {0, 1}, {1, 0}, {1, 9}, {1, 10}, {12, 345}} {
		rendered := fmt.Sprintf("%d.%d", pair[0], pair[1])
		major, minor, err := ParseVersion(rendered)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", rendered, err)
		}
		if major != pair[0] || minor != pair[1] {
			t.Fatalf("ParseVersion(%q) = (%d,%d), want (%d,%d)", rendered, major, minor, pair[0], pair[1])
		}
	}
}

func TestParseVersionRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "1", "1.", ".1", "a.b", "1.0.0x", "-1.0"} {
		if _, _, err := ParseVersion(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestCompareVersionsIsNumericNotLexicographic(t *testing.T) {
	if CompareVersions(1, 10, 1, 9) != 1 {
		t.Fatal("1.10 must sort after 1.9")
	}
	if CompareVersions(1, 9, 1, 10) != -1 {
		t.Fatal("1.9 must sort before 1.10")
	}
	if CompareVersions(2, 0, 1, 99) != 1 {
		t.Fatal("2.0 must sort after 1.99")
	}
	if CompareVersions(3, 4, 3, 4) != 0 {
		t.Fatal("equal versions must compare equal")
	}
}

func TestNewDraftVersionFromDraftBumpsMinor(t *testing.T) {
	meta := InitialItemMetadata("U1")
	next, err := meta.NewDraftVersion(SemanticVersioning{}, "U2", "first edit")
	if err != nil {
		t.Fatalf("NewDraftVersion: %v", err)
	}
	if next.Version() != "0.1" || next.Status != enums.ItemStatusDraft {
		t.Fatalf("expected draft 0.1, got %s %s", next.Status, next.Version())
	}
	if next.AuthorID != "U2" || next.ChangeDescription != "first edit" {
		t.Fatalf("author/description not carried: %+v", next)
	}
}

func TestNewDraftVersionFromFinalResetsMinorToOne(t *testing.T) {
	meta := ItemMetadata{Status: enums.ItemStatusFinal, MajorVersion: 1, MinorVersion: 0}
	next, err := meta.NewDraftVersion(SemanticVersioning{}, "U1", "checkout")
	if err != nil {
		t.Fatalf("NewDraftVersion: %v", err)
	}
	if next.Version() != "1.1" {
		t.Fatalf("expected 1.1 after checkout, got %s", next.Version())
	}
	if next.Status != enums.ItemStatusDraft {
		t.Fatalf("expected draft status, got %s", next.Status)
	}
}

func TestNewDraftVersionRejectedWhileRetired(t *testing.T) {
	meta := ItemMetadata{Status: enums.ItemStatusRetired, MajorVersion: 2}
	_, err := meta.NewDraftVersion(SemanticVersioning{}, "U1", "edit")
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestApprove(t *testing.T) {
	t.Run("fromDraft", func(t *testing.T) {
		meta := ItemMetadata{Status: enums.ItemStatusDraft, MajorVersion: 0, MinorVersion: 1}
		next, err := meta.Approve(SemanticVersioning{}, "U1")
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if next.Version() != "1.0" || next.Status != enums.ItemStatusFinal {
			t.Fatalf("expected final 1.0, got %s %s", next.Status, next.Version())
		}
		if next.ChangeDescription != "Approved version" {
			t.Fatalf("unexpected change description %q", next.ChangeDescription)
		}
	})

	t.Run("minorResetsEveryApproval", func(t *testing.T) {
		meta := ItemMetadata{Status: enums.ItemStatusDraft, MajorVersion: 3, MinorVersion: 7}
		next, err := meta.Approve(SemanticVersioning{}, "U1")
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if next.Version() != "4.0" {
			t.Fatalf("expected 4.0, got %s", next.Version())
		}
	})

	t.Run("rejectedFromFinal", func(t *testing.T) {
		meta := ItemMetadata{Status: enums.ItemStatusFinal, MajorVersion: 1}
		if _, err := meta.Approve(SemanticVersioning{}, "U1"); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})

	t.Run("rejectedFromRetired", func(t *testing.T) {
		meta := ItemMetadata{Status: enums.ItemStatusRetired, MajorVersion: 1}
		if _, err := meta.Approve(SemanticVersioning{}, "U1"); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})
}

func TestInactivateReactivateRoundTrip(t *testing.T) {
	final := ItemMetadata{Status: enums.ItemStatusFinal, MajorVersion: 1, MinorVersion: 0}

	retired, err := final.Inactivate("U1")
	if err != nil {
		t.Fatalf("Inactivate: %v", err)
	}
	if retired.Status != enums.ItemStatusRetired || retired.Version() != "1.0" {
		t.Fatalf("expected retired 1.0, got %s %s", retired.Status, retired.Version())
	}
	if retired.ChangeDescription != "Inactivated version" {
		t.Fatalf("unexpected change description %q", retired.ChangeDescription)
	}

	restored, err := retired.Reactivate("U1")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if restored.Status != enums.ItemStatusFinal || restored.Version() != "1.0" {
		t.Fatalf("expected final 1.0 after round trip, got %s %s", restored.Status, restored.Version())
	}
	if restored.ChangeDescription != "Reactivated version" {
		t.Fatalf("unexpected change description %q", restored.ChangeDescription)
	}
}

func TestInactivateRejectedOutsideFinal(t *testing.T) {
	for _, status := range []enums.ItemStatus{enums.ItemStatusDraft, enums.ItemStatusRetired} {
		meta := ItemMetadata{Status: status, MajorVersion: 1}
		if _, err := meta.Inactivate("U1"); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("expected state conflict from %s, got %v", status, err)
		}
	}
}

func TestReactivateRejectedOutsideRetired(t *testing.T) {
	for _, status := range []enums.ItemStatus{enums.ItemStatusDraft, enums.ItemStatusFinal} {
		meta := ItemMetadata{Status: status, MajorVersion: 1}
		if _, err := meta.Reactivate("U1"); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("expected state conflict from %s, got %v", status, err)
		}
	}
}

func TestPinnedMajorVersioning(t *testing.T) {
	policy := PinnedMajorVersioning{Major: 4}

	meta := ItemMetadata{Status: enums.ItemStatusFinal, MajorVersion: 4, MinorVersion: 0}
	draft, err := meta.NewDraftVersion(policy, "U1", "checkout")
	if err != nil {
		t.Fatalf("NewDraftVersion: %v", err)
	}
	if draft.Version() != "4.0" {
		t.Fatalf("pinned policy must keep 4.0, got %s", draft.Version())
	}

	final, err := draft.Approve(policy, "U1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if final.Version() != "4.0" {
		t.Fatalf("pinned policy must keep 4.0 on approval, got %s", final.Version())
	}
}
