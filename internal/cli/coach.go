package cli

import (
	"fmt"

	"github.com/terraincognita07/mindful/internal/services"
)

type AssignCoachCmd struct {
	Email string `arg:"" help:"Email of the member."`
	Coach string `arg:"" help:"Display name of the coach."`
	Limit int    `help:"Messages the member may send. Zero uses the default allowance." default:"0"`
}

func (cmd *AssignCoachCmd) Run(ctx *Context) error {
	user, repos, err := ctx.findUser(cmd.Email)
	if err != nil {
		return err
	}
	assignment, err := services.NewCoachService(repos.Coaching).Assign(user.ID, cmd.Coach, cmd.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s assigned to %s (%d/%d messages used)\n",
		assignment.CoachName, user.Email, assignment.MessageCount, assignment.MessageLimit)
	return nil
}

type CoachReplyCmd struct {
	Email   string `arg:"" help:"Email of the member."`
	Message string `arg:"" help:"Reply text."`
}

func (cmd *CoachReplyCmd) Run(ctx *Context) error {
	user, repos, err := ctx.findUser(cmd.Email)
	if err != nil {
		return err
	}
	message, err := services.NewCoachService(repos.Coaching).Reply(user.ID, cmd.Message, ctx.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Reply #%d stored for %s\n", message.ID, user.Email)
	return nil
}
