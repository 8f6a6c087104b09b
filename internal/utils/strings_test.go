package utils

import "testing"

func TestNormalizeString(t *testing.T) {
	if got := NormalizeString("  Ada   Byron \n"); got != "Ada Byron" {
		t.Fatalf("got %q", got)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"Guest@Example.com", true},
		{"  guest@example.org ", true},
		{"guest@", false},
		{"@example.com", false},
		{"a@b@example.com", false},
		{"guest@localhost", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.in); got != tt.valid {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.in, got, tt.valid)
		}
	}
	if NormalizeEmail(" Guest@Example.COM ") != "guest@example.com" {
		t.Error("NormalizeEmail should lowercase and trim")
	}
}

func TestPhone(t *testing.T) {
	if got := NormalizePhone("+1 (555) 010-2030"); got != "+15550102030" {
		t.Fatalf("NormalizePhone = %q", got)
	}
	if !IsValidPhone("555-0102") {
		t.Error("seven digits should be valid")
	}
	if IsValidPhone("+12345") {
		t.Error("too short")
	}
}
