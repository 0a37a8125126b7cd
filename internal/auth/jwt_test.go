package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "crm-test")

	token, expiresAt, err := m.Issue("user-1", "agent@example.com", RoleAgent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if expiresAt <= time.Now().Unix() {
		t.Errorf("expiresAt = %d, want future timestamp", expiresAt)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "agent@example.com" {
		t.Errorf("Email = %q, want agent@example.com", claims.Email)
	}
	if claims.Role != RoleAgent {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAgent)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewManager("secret-a", time.Hour, "crm-test")
	other := NewManager("secret-b", time.Hour, "crm-test")

	token, _, err := m.Issue("user-1", "a@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, "crm-test")

	token, _, err := m.Issue("user-1", "a@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify expired token: err = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "crm-test")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(token); err == nil {
			t.Errorf("Verify(%q) succeeded, want error", token)
		}
	}
}
