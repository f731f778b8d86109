package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeBusinessRule, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	inner := New(CodeConflict, "Codelist with Name 'VS' already exists.")
	wrapped := fmt.Errorf("saving codelist: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("expected conflict code, got %s", typed.Code())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeStateConflict, "cannot approve")
	if !IsCode(err, CodeStateConflict) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeConflict) {
		t.Fatal("expected IsCode mismatch")
	}
	if IsCode(nil, CodeConflict) {
		t.Fatal("nil error should never match")
	}
}

func TestWrapNilBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeBusinessRule, nil, "Library 'CDISC' isn't editable.")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Message() != "Library 'CDISC' isn't editable." {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeConflict, "duplicate").WithDetails(map[string]string{"field": "name"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "name" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
