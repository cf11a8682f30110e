package session

import (
	"testing"
	"time"
)

func TestCreateAndValidate(t *testing.T) {
	store := NewStore(time.Minute)

	token, err := store.Create("demo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	info, ok := store.Validate(token)
	if !ok {
		t.Fatal("expected token to validate")
	}
	if info.Username != "demo" {
		t.Errorf("username = %q, want demo", info.Username)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	store := NewStore(time.Minute)

	if _, ok := store.Validate("bogus"); ok {
		t.Error("unknown token should not validate")
	}
	if _, ok := store.Validate(""); ok {
		t.Error("empty token should not validate")
	}
}

func TestRevoke(t *testing.T) {
	store := NewStore(time.Minute)

	token, _ := store.Create("demo")
	store.Revoke(token)

	if _, ok := store.Validate(token); ok {
		t.Error("revoked token should not validate")
	}
}

func TestTokenExpiry(t *testing.T) {
	store := NewStore(10 * time.Millisecond)

	token, _ := store.Create("demo")
	time.Sleep(20 * time.Millisecond)

	if _, ok := store.Validate(token); ok {
		t.Error("expired token should not validate")
	}
}

func TestTokensAreUnique(t *testing.T) {
	store := NewStore(time.Minute)

	a, _ := store.Create("demo")
	b, _ := store.Create("demo")
	if a == b {
		t.Error("two sessions should never share a token")
	}
}
