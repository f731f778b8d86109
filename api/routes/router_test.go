package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	pkgauth "github.com/clinmeta/cmdr-backend/pkg/auth"
	"github.com/clinmeta/cmdr-backend/pkg/config"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

func testRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "router-secret", Issuer: "cmdr-test", ExpirationMinutes: 5}

	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, nil, nil, prometheus.NewRegistry(), Services{}), cfg
}

func TestHealthLiveIsPublic(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-CMDR-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-CMDR-Env"))
	}
}

func TestMetricsIsPublic(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestV1RequiresToken(t *testing.T) {
	router, _ := testRouter(t)

	paths := []string{"/api/v1/codelists", "/api/v1/terms", "/api/v1/activities", "/api/v1/forms", "/api/v1/libraries"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, rec.Code)
		}
	}
}

func TestV1AcceptsValidToken(t *testing.T) {
	router, cfg := testRouter(t)

	token, err := pkgauth.IssueAccessToken(cfg.JWT, "author-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	// Services are unwired in this test, so a valid token reaches the
	// handler and gets its internal-error response instead of a 401.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/codelists", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from unwired service, got %d", rec.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header to be set")
	}
}
