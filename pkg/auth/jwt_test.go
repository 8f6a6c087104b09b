package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(7, "desk@example.com", RoleStaff, "secret", time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := Parse(tok, "secret")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != 7 || claims.Role != RoleStaff {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecretAndExpiry(t *testing.T) {
	tok, _ := NewAccessToken(1, "a@b.co", RoleStaff, "secret", time.Minute)
	if _, err := Parse(tok, "other"); err == nil {
		t.Fatal("expected signature error")
	}

	expired, _ := NewAccessToken(1, "a@b.co", RoleStaff, "secret", -time.Minute)
	if _, err := Parse(expired, "secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestAllows(t *testing.T) {
	tests := []struct {
		role, required string
		want           bool
	}{
		{RoleStaff, RoleStaff, true},
		{RoleManager, RoleStaff, true},
		{"guest", RoleStaff, false},
		{"guest", "", true},
	}
	for _, tt := range tests {
		c := &Claims{Role: tt.role}
		if got := c.Allows(tt.required); got != tt.want {
			t.Errorf("Allows(%q) with role %q = %v, want %v", tt.required, tt.role, got, tt.want)
		}
	}
}
