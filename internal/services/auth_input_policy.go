package services

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")

const maxEmailLength = 254

// Credentials are a trimmed email and password pair. Email is lowercased.
type Credentials struct {
	Email    string
	Password string
}

// NormalizeAuthEmail returns "" for anything that is not a bare address;
// display-name forms like "Ann <ann@example.com>" are rejected.
func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return ""
	}
	if address, err := mail.ParseAddress(email); err != nil || address.Address != email {
		return ""
	}
	return email
}

func NormalizeCredentials(emailRaw string, passwordRaw string) (Credentials, error) {
	credentials := Credentials{
		Email:    NormalizeAuthEmail(emailRaw),
		Password: strings.TrimSpace(passwordRaw),
	}
	if credentials.Email == "" || credentials.Password == "" {
		return Credentials{}, ErrAuthCredentialsInvalid
	}
	return credentials, nil
}
