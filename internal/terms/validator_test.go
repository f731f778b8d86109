package terms

import (
	"context"
	"testing"

	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

type fakeOracle struct {
	codelists        map[string]bool
	names            map[string]bool
	submissionValues map[string]bool
}

func (f *fakeOracle) CodelistExists(_ context.Context, uid string) (bool, error) {
	return f.codelists[uid], nil
}

func (f *fakeOracle) NameExists(_ context.Context, codelistUID, name string) (bool, error) {
	return f.names[codelistUID+"/"+name], nil
}

func (f *fakeOracle) SubmissionValueExists(_ context.Context, codelistUID, value string) (bool, error) {
	return f.submissionValues[codelistUID+"/"+value], nil
}

func validValue() TermValue {
	return TermValue{
		CodelistUID:     "CTCodelist_1",
		Name:            "Male",
		SubmissionValue: "M",
	}
}

func TestTermValidatorMissingCodelist(t *testing.T) {
	oracle := &fakeOracle{codelists: map[string]bool{}}
	err := PayloadValidator{Oracle: oracle}.Validate(context.Background(), validValue(), nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeBusinessRule) {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if err.Error() != "BUSINESS_RULE_VIOLATION: Codelist with UID 'CTCodelist_1' doesn't exist." {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestTermValidatorUniquenessScopedToCodelist(t *testing.T) {
	oracle := &fakeOracle{
		codelists: map[string]bool{"CTCodelist_1": true, "CTCodelist_2": true},
		names:     map[string]bool{"CTCodelist_2/Male": true},
	}

	// same name under a different codelist is fine
	if err := (PayloadValidator{Oracle: oracle}).Validate(context.Background(), validValue(), nil); err != nil {
		t.Fatalf("expected scoped uniqueness to pass, got %v", err)
	}

	clash := validValue()
	clash.CodelistUID = "CTCodelist_2"
	err := PayloadValidator{Oracle: oracle}.Validate(context.Background(), clash, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict within owning codelist, got %v", err)
	}
}

func TestTermValidatorPreviousValueExempt(t *testing.T) {
	oracle := &fakeOracle{
		codelists:        map[string]bool{"CTCodelist_1": true},
		names:            map[string]bool{"CTCodelist_1/Male": true},
		submissionValues: map[string]bool{"CTCodelist_1/M": true},
	}
	previous := validValue()
	candidate := validValue()
	candidate.Definition = "Male sex."

	if err := (PayloadValidator{Oracle: oracle}).Validate(context.Background(), candidate, &previous); err != nil {
		t.Fatalf("expected exemption for unchanged values, got %v", err)
	}
}

func TestTermValueEqual(t *testing.T) {
	a := TermValue{Name: "Male", Synonyms: []string{"M", "MALE"}}
	b := TermValue{Name: "Male", Synonyms: []string{"M", "MALE"}}
	if !a.Equal(b) {
		t.Fatal("expected equal values")
	}
	b.Synonyms = []string{"M"}
	if a.Equal(b) {
		t.Fatal("expected synonym difference to break equality")
	}
}
