package cli

import (
	"fmt"
	"time"

	"github.com/terraincognita07/mindful/internal/services"
)

type SetTierCmd struct {
	Email     string `arg:"" help:"Email of the account."`
	Tier      string `arg:"" enum:"free,premium" help:"Subscription tier (free or premium)."`
	Days      int    `help:"Premium length in days. Zero keeps it open ended." default:"0"`
	TrialDays int    `name:"trial-days" help:"Start a trial of this many days." default:"0"`
}

func (cmd *SetTierCmd) Run(ctx *Context) error {
	user, repos, err := ctx.findUser(cmd.Email)
	if err != nil {
		return err
	}

	settings := services.NewSettingsService(repos.Users, repos.Badges, repos.Entries, repos.Habits)
	duration := time.Duration(cmd.Days) * 24 * time.Hour
	now := ctx.now()
	if err := settings.ChangeTier(user.ID, cmd.Tier, duration, cmd.TrialDays, now); err != nil {
		return err
	}

	updated, err := repos.Users.FindByID(user.ID)
	if err != nil {
		return fmt.Errorf("reload user: %w", err)
	}
	status := services.BuildSubscriptionStatus(updated.Profile(), now)
	fmt.Fprintf(ctx.Out, "%s is now %s (premium access: %t", updated.Email, status.Tier, status.IsPremium)
	if status.IsOnTrial {
		fmt.Fprintf(ctx.Out, ", trial days left: %d", status.TrialDaysRemaining)
	}
	fmt.Fprintln(ctx.Out, ")")

	// Awards the premium pioneer badge right away instead of on the next action.
	for _, badge := range ctx.badgeService(repos).Evaluate(user.ID, now) {
		fmt.Fprintf(ctx.Out, "Badge earned: %s %s\n", badge.Icon, badge.Name)
	}
	return nil
}
