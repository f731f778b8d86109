package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Term Synonyms!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_term_synonyms.sql") {
		t.Fatalf("unexpected filename: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading created migration: %v", err)
	}
	if !strings.Contains(string(b), "-- +goose Up") || !strings.Contains(string(b), "-- +goose Down") {
		t.Fatal("template missing goose headers")
	}
}

func TestCreateSQLMigrationEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for unsanitizable name")
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("20260110093000_init_schema.sql", "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected valid dir, got %v", err)
	}

	write("badname.sql", "-- +goose Up\n-- +goose Down\n")
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestValidateDirMissingDown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20260110093000_init_schema.sql")
	if err := os.WriteFile(path, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected missing Down header error")
	}
}
