package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithEntity(ctx, "Codelist", "CTCodelist_1")
	logg.Info(ctx, "lifecycle.transition")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request_id in %v", entry)
	}
	if entry["entity_type"] != "Codelist" || entry["entity_uid"] != "CTCodelist_1" {
		t.Fatalf("missing entity fields in %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service field in %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel(" DEBUG ") != zerolog.DebugLevel {
		t.Fatal("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected info fallback")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatal("expected info fallback for bogus value")
	}
}
