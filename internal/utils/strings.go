package utils

import (
	"strings"
	"unicode"
)

// NormalizeString trims surrounding whitespace and collapses inner runs of spaces.
func NormalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// IsValidEmail performs basic email validation
func IsValidEmail(email string) bool {
	normalized := NormalizeEmail(email)
	local, domain, ok := strings.Cut(normalized, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return len(local) > 0 && len(domain) > 2 && strings.Contains(domain, ".") && !strings.ContainsAny(normalized, " \t")
}

// IsValidPhone requires at least seven digits after normalisation.
func IsValidPhone(phone string) bool {
	normalized := NormalizePhone(phone)
	return len(strings.TrimPrefix(normalized, "+")) >= 7
}
