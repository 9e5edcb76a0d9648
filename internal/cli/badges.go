package cli

import (
	"fmt"

	"github.com/terraincognita07/mindful/internal/models"
)

// EvaluateBadgesCmd reruns the award pass, for one account or all of them.
// Useful after catalog changes.
type EvaluateBadgesCmd struct {
	Email string `arg:"" optional:"" help:"Email of the account. Omit to evaluate every account."`
}

func (cmd *EvaluateBadgesCmd) Run(ctx *Context) error {
	var users []models.User
	if cmd.Email != "" {
		user, _, err := ctx.findUser(cmd.Email)
		if err != nil {
			return err
		}
		users = []models.User{user}
	} else {
		repos, err := ctx.Repositories()
		if err != nil {
			return err
		}
		users, err = repos.Users.ListAll()
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
	}

	repos, err := ctx.Repositories()
	if err != nil {
		return err
	}
	badges := ctx.badgeService(repos)
	now := ctx.now()
	awarded := 0
	for _, user := range users {
		for _, badge := range badges.Evaluate(user.ID, now) {
			awarded++
			fmt.Fprintf(ctx.Out, "%s: %s %s\n", user.Email, badge.Icon, badge.Name)
		}
	}
	fmt.Fprintf(ctx.Out, "Evaluated %d account(s), %d new badge(s).\n", len(users), awarded)
	return nil
}
