package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"uid": "CTCodelist_1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("expected data in envelope")
	}
}

func TestWriteErrorCanonicalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.Newf(pkgerrors.CodeBusinessRule, "Codelist with UID 'x' isn't in draft status.")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Error.Message != "Codelist with UID 'x' isn't in draft status." {
		t.Fatalf("canonical message mangled: %q", envelope.Error.Message)
	}
	if envelope.Error.Code != string(pkgerrors.CodeBusinessRule) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
}

func TestWriteErrorStateConflictStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot approve in status 'final'"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection refused"), "db exploded"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", envelope.Error.Message)
	}
}

func TestWriteErrorUntyped(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
