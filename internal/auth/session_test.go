package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

func TestVerifyPasswordPlain(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, "2599423", "")

	if err := m.VerifyPassword("2599423"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := m.VerifyPassword("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password error = %v, want ErrInvalidPassword", err)
	}
}

func TestVerifyPasswordHashTakesPrecedence(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// Plaintext set to something else; the hash must win.
	m := NewSessionManager("secret", time.Hour, "ignored", hash)

	if err := m.VerifyPassword("hunter2"); err != nil {
		t.Fatalf("hashed password rejected: %v", err)
	}
	if err := m.VerifyPassword("ignored"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("plaintext fallback accepted despite hash, err = %v", err)
	}
}

func TestVerifyPasswordUnconfigured(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, "", "")
	if err := m.VerifyPassword("anything"); err == nil {
		t.Fatal("expected error with no password configured")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, "pw", "")

	token, err := m.IssueToken("profile-ahmad")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.OpenID != "profile-ahmad" {
		t.Fatalf("openID = %q, want %q", claims.OpenID, "profile-ahmad")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := NewSessionManager("secret-a", time.Hour, "pw", "")
	verifier := NewSessionManager("secret-b", time.Hour, "pw", "")

	token, err := issuer.IssueToken("profile-ahmad")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.ParseToken(token); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	m := NewSessionManager("secret", time.Nanosecond, "pw", "")

	token, err := m.IssueToken("profile-ahmad")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.ParseToken(token); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}
