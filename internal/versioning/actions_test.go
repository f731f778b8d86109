package versioning

import (
	"sort"
	"testing"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
)

func actionsOf(t *testing.T, status enums.ItemStatus, major uint, editable bool, mutate func(*Capabilities[widgetValue])) []string {
	t.Helper()
	caps := widgetCaps(&fakeValidator{})
	if mutate != nil {
		mutate(&caps)
	}
	library := NewLibraryRef("Lib", func() bool { return editable })
	agg := Rehydrate(caps, "Widget_1", library,
		ItemMetadata{Status: status, MajorVersion: major, MinorVersion: 1}, widgetValue{}, nil)

	got := agg.PossibleActions()
	names := make([]string, 0, len(got))
	for _, a := range got {
		names = append(names, a.String())
	}
	sort.Strings(names)
	return names
}

func equalActions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPossibleActionsCanonicalTable(t *testing.T) {
	cases := []struct {
		name     string
		status   enums.ItemStatus
		major    uint
		editable bool
		want     []string
	}{
		{"draftMajorZeroEditable", enums.ItemStatusDraft, 0, true, []string{"approve", "delete", "edit"}},
		{"draftApprovedOnceEditable", enums.ItemStatusDraft, 1, true, []string{"approve", "edit"}},
		{"finalEditable", enums.ItemStatusFinal, 1, true, []string{"inactivate", "new_version"}},
		{"retiredEditable", enums.ItemStatusRetired, 1, true, []string{"reactivate"}},
		{"draftFrozen", enums.ItemStatusDraft, 0, false, []string{}},
		{"finalFrozen", enums.ItemStatusFinal, 1, false, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := actionsOf(t, tc.status, tc.major, tc.editable, nil)
			if !equalActions(got, tc.want) {
				t.Fatalf("actions = %v, want %v", got, tc.want)
			}
		})
	}
}

// Reactivate is deliberately exempt from the editability gate (the normalized
// policy); families carrying FrozenLibraryGatesRestore opt back in.
func TestPossibleActionsRetiredFrozen(t *testing.T) {
	got := actionsOf(t, enums.ItemStatusRetired, 1, false, nil)
	if !equalActions(got, []string{"reactivate"}) {
		t.Fatalf("actions = %v, want [reactivate]", got)
	}

	gated := actionsOf(t, enums.ItemStatusRetired, 1, false, func(c *Capabilities[widgetValue]) {
		c.FrozenLibraryGatesRestore = true
	})
	if !equalActions(gated, []string{}) {
		t.Fatalf("actions = %v, want none when restore is gated", gated)
	}
}

func TestPossibleActionsFrozenEditExemption(t *testing.T) {
	got := actionsOf(t, enums.ItemStatusDraft, 0, false, func(c *Capabilities[widgetValue]) {
		c.EditAllowedInFrozenLibrary = true
	})
	if !equalActions(got, []string{"approve", "delete", "edit"}) {
		t.Fatalf("actions = %v, want draft set under exempt family", got)
	}
}

func TestPossibleActionsNoDeleteWithoutCapability(t *testing.T) {
	got := actionsOf(t, enums.ItemStatusDraft, 0, true, func(c *Capabilities[widgetValue]) {
		c.SoftDeleteSupported = false
	})
	if !equalActions(got, []string{"approve", "edit"}) {
		t.Fatalf("actions = %v, want no delete", got)
	}
}

// The action set must be a pure function of status, major version, and
// editability: recomputing it never changes the result.
func TestPossibleActionsIsPure(t *testing.T) {
	caps := widgetCaps(&fakeValidator{})
	agg := Rehydrate(caps, "Widget_1", editableLibrary(),
		ItemMetadata{Status: enums.ItemStatusFinal, MajorVersion: 2}, widgetValue{}, nil)

	first := agg.PossibleActions()
	second := agg.PossibleActions()
	if len(first) != len(second) {
		t.Fatalf("action set unstable: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("action set unstable: %v vs %v", first, second)
		}
	}
}
