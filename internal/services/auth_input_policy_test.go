package services

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeAuthEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "normalizes case and spaces", raw: " USER@EXAMPLE.COM ", want: "user@example.com"},
		{name: "invalid email returns empty", raw: "not-email", want: ""},
		{name: "empty returns empty", raw: "   ", want: ""},
		{name: "display name form rejected", raw: "Ann <ann@example.com>", want: ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if got := NormalizeAuthEmail(testCase.raw); got != testCase.want {
				t.Fatalf("NormalizeAuthEmail(%q) = %q, want %q", testCase.raw, got, testCase.want)
			}
		})
	}
}

func TestNormalizeCredentials(t *testing.T) {
	credentials, err := NormalizeCredentials(" USER@EXAMPLE.COM ", "  StrongPass1  ")
	if err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if credentials != (Credentials{Email: "user@example.com", Password: "StrongPass1"}) {
		t.Fatalf("unexpected normalized credentials %+v", credentials)
	}

	invalid := []struct {
		name     string
		email    string
		password string
	}{
		{name: "invalid email", email: "not-email", password: "StrongPass1"},
		{name: "blank password", email: "user@example.com", password: " "},
		{name: "overlong email", email: strings.Repeat("a", 250) + "@example.com", password: "StrongPass1"},
	}
	for _, testCase := range invalid {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := NormalizeCredentials(testCase.email, testCase.password); !errors.Is(err, ErrAuthCredentialsInvalid) {
				t.Fatalf("expected ErrAuthCredentialsInvalid, got %v", err)
			}
		})
	}
}
