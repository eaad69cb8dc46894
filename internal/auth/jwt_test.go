package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

func TestIssueAndValidate(t *testing.T) {
	tok, err := IssueToken(testSecret, "admin", "admin", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, tok)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	tok, err := IssueToken(testSecret, "admin", "", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken(testSecret, tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestWrongSecret(t *testing.T) {
	tok, err := IssueToken(testSecret, "admin", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken("other-secret", tok); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestEmptySecret(t *testing.T) {
	if _, err := ValidateToken("", "whatever"); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := IssueToken("", "admin", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGarbageToken(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}
