package services

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordStrength_RejectsWeakPasswords(t *testing.T) {
	testCases := map[string]string{
		"Short1":        "at least 8",
		"alllowercase1": "uppercase",
		"ALLUPPERCASE1": "lowercase",
		"NoDigitsHere":  "digit",
	}

	for password, hint := range testCases {
		err := ValidatePasswordStrength(password)
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
		if !strings.Contains(err.Error(), hint) {
			t.Fatalf("expected hint %q for %q, got %q", hint, password, err.Error())
		}
	}
}

func TestValidatePasswordStrength_AcceptsStrongPassword(t *testing.T) {
	if err := ValidatePasswordStrength("StrongPass1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidatePasswordStrength_RejectsOverlongPassword(t *testing.T) {
	password := "Aa1" + strings.Repeat("x", 70)
	if err := ValidatePasswordStrength(password); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
