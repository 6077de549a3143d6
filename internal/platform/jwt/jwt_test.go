package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", "test")
	tok, err := m.Generate("admin", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != RoleAdmin || claims.Subject != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsForeignTokens(t *testing.T) {
	tok, _ := NewManager("other-secret", "test").Generate("admin", RoleAdmin, time.Minute)
	if _, err := NewManager("secret", "test").Parse(tok); err == nil {
		t.Fatalf("expected signature error")
	}

	tok, _ = NewManager("secret", "other-issuer").Generate("admin", RoleAdmin, time.Minute)
	if _, err := NewManager("secret", "test").Parse(tok); err == nil {
		t.Fatalf("expected issuer error")
	}

	expired, _ := NewManager("secret", "test").Generate("admin", RoleAdmin, -time.Minute)
	if _, err := NewManager("secret", "test").Parse(expired); err == nil {
		t.Fatalf("expected expiry error")
	}
}
