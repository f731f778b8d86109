package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	pkgauth "github.com/clinmeta/cmdr-backend/pkg/auth"
	"github.com/clinmeta/cmdr-backend/pkg/config"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cmdr-test",
		ExpirationMinutes: 5,
	}
}

func TestAuthSeedsAuthor(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.IssueAccessToken(cfg, "author-9")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	var seenAuthor string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuthor = AuthorIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seenAuthor != "author-9" {
		t.Fatalf("expected author in context, got %q", seenAuthor)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(authTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(authTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
