package services

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrWeakPassword    = errors.New("weak password")
	ErrPasswordTooLong = errors.New("password is too long")
)

// ValidatePasswordStrength requires at least eight characters mixing upper
// case, lower case and digits. The returned error names the first gap.
func ValidatePasswordStrength(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: add an uppercase letter", ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: add a lowercase letter", ErrWeakPassword)
	case !hasDigit:
		return fmt.Errorf("%w: add a digit", ErrWeakPassword)
	}
	return nil
}
