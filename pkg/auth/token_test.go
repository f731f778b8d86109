package auth

import (
	"strings"
	"testing"

	"github.com/clinmeta/cmdr-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cmdr-test",
		ExpirationMinutes: 5,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	raw, err := IssueAccessToken(cfg, "author-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, raw)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AuthorID() != "author-1" {
		t.Fatalf("unexpected author %q", claims.AuthorID())
	}
}

func TestTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	raw, err := IssueAccessToken(cfg, "author-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	bad := cfg
	bad.Secret = "other-secret"
	if _, err := ParseAccessToken(bad, raw); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestTokenWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	raw, err := IssueAccessToken(cfg, "author-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, raw); err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected issuer failure, got %v", err)
	}
}
