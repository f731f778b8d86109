package pagination

import (
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatal("zero should normalize to default")
	}
	if NormalizeLimit(-5) != DefaultLimit {
		t.Fatal("negative should normalize to default")
	}
	if NormalizeLimit(1000) != MaxLimit {
		t.Fatal("oversized should clamp to max")
	}
	if NormalizeLimit(10) != 10 {
		t.Fatal("in-range should pass through")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, UID: "CTCodelist_42"})

	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if parsed == nil || !parsed.CreatedAt.Equal(at) || parsed.UID != "CTCodelist_42" {
		t.Fatalf("unexpected cursor %+v", parsed)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cur, err := ParseCursor("  ")
	if err != nil || cur != nil {
		t.Fatalf("expected nil cursor for blank input, got %v %v", cur, err)
	}
}

func TestParseCursorGarbage(t *testing.T) {
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm8tc2VwYXJhdG9y"); err == nil { // "no-separator"
		t.Fatal("expected format error")
	}
}
