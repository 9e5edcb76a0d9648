package cli

import (
	"fmt"

	"github.com/terraincognita07/mindful/internal/security"
	"github.com/terraincognita07/mindful/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordLength = 12

// ResetPasswordCmd is the account recovery path. Without --prompt it sets a
// temporary password the user must replace after signing in.
type ResetPasswordCmd struct {
	Email  string `arg:"" help:"Email of the account to reset."`
	Prompt bool   `help:"Read the new password from the terminal instead of generating one."`
}

func (cmd *ResetPasswordCmd) Run(ctx *Context) error {
	user, repos, err := ctx.findUser(cmd.Email)
	if err != nil {
		return err
	}

	password := ""
	mustChange := true
	if cmd.Prompt {
		password, err = promptNewPassword(ctx.Out, ctx.Stdin)
		if err != nil {
			return err
		}
		if err := services.ValidatePasswordStrength(password); err != nil {
			return err
		}
		mustChange = false
	} else {
		password, err = security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repos.Users.UpdatePassword(user.ID, string(passwordHash), mustChange); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintf(ctx.Out, "Password reset for %s. Existing sessions are signed out.\n", user.Email)
	if mustChange {
		fmt.Fprintf(ctx.Out, "Temporary password: %s\n", password)
		fmt.Fprintln(ctx.Out, "User must change password on next login.")
	}
	return nil
}
