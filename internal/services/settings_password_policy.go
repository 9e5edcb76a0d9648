package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSettingsPasswordChangeInvalidInput = errors.New("settings password change invalid input")
	ErrSettingsPasswordMismatch           = errors.New("settings password mismatch")
	ErrSettingsInvalidCurrentPassword     = errors.New("settings invalid current password")
	ErrSettingsNewPasswordMustDiffer      = errors.New("settings new password must differ")
	ErrSettingsWeakPassword               = errors.New("settings weak password")
)

// PasswordChange is a settings request to replace the account password.
// A temporary password issued by the operator counts as the current one.
type PasswordChange struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"confirm_password"`
}

func (change PasswordChange) trimmed() PasswordChange {
	return PasswordChange{
		Current: strings.TrimSpace(change.Current),
		New:     strings.TrimSpace(change.New),
		Confirm: strings.TrimSpace(change.Confirm),
	}
}

// ValidatePasswordChange applies the rules in order; the first failure wins.
func ValidatePasswordChange(passwordHash string, change PasswordChange) error {
	change = change.trimmed()

	switch {
	case change.Current == "" || change.New == "" || change.Confirm == "":
		return ErrSettingsPasswordChangeInvalidInput
	case change.New != change.Confirm:
		return ErrSettingsPasswordMismatch
	case bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(change.Current)) != nil:
		return ErrSettingsInvalidCurrentPassword
	case change.Current == change.New:
		return ErrSettingsNewPasswordMustDiffer
	}

	if err := ValidatePasswordStrength(change.New); err != nil {
		return errors.Join(ErrSettingsWeakPassword, err)
	}
	return nil
}
