package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/terraincognita07/mindful/internal/cli"
	"github.com/terraincognita07/mindful/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	DBPath   string `name:"db" help:"SQLite database path." env:"DB_PATH" default:"data/mindful.db"`
	TZ       string `name:"tz" help:"Time zone used for calendar days." env:"TZ" default:"UTC"`
	LogLevel string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"info"`
	LogFile  string `help:"Rotating log file path." env:"LOG_FILE"`

	Serve          ServeCmd              `cmd:"" help:"Run the HTTP API." default:"1"`
	ResetPassword  cli.ResetPasswordCmd  `cmd:"" name:"reset-password" help:"Reset a user's password."`
	SetTier        cli.SetTierCmd        `cmd:"" name:"set-tier" help:"Change a user's subscription tier."`
	Stats          cli.StatsCmd          `cmd:"" help:"Print progress for a user."`
	EvaluateBadges cli.EvaluateBadgesCmd `cmd:"" name:"evaluate-badges" help:"Award any badges that are due."`
	Notify         cli.NotifyCmd         `cmd:"" help:"Send due reminders once."`
	Coach          struct {
		Assign cli.AssignCoachCmd `cmd:"" help:"Assign a coach to a premium user."`
		Reply  cli.CoachReplyCmd  `cmd:"" help:"Post a coach reply."`
	} `cmd:"" help:"Manage coaching conversations."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: reading .env: %v\n", err)
		os.Exit(1)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("mindful"),
		kong.Description("Daily money mindset tracker"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := logger.Init(logger.Config{Level: CLI.LogLevel, File: CLI.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: log init failed: %v\n", err)
		os.Exit(1)
	}

	location := loadLocation(CLI.TZ)
	time.Local = location

	appCtx := cli.NewContext(CLI.DBPath, location)
	err := ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("database close failed", "err", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}
