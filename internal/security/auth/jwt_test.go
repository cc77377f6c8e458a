package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("secret", "taskboard")

	token, err := tm.GenerateToken("user-1", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "taskboard" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "taskboard")

	token, err := tm.GenerateToken("user-1", "alice@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestValidateWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", "taskboard")
	other := NewTokenManager("other-secret", "taskboard")

	token, err := tm.GenerateToken("user-1", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("unexpected result: %q %v", token, err)
	}

	if _, err := ExtractToken("abc.def.ghi"); err == nil {
		t.Fatalf("expected error without Bearer prefix")
	}
	if _, err := ExtractToken(""); err == nil {
		t.Fatalf("expected error for empty header")
	}
}
