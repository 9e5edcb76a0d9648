package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/terraincognita07/mindful/internal/api"
	"github.com/terraincognita07/mindful/internal/cli"
	"github.com/terraincognita07/mindful/internal/i18n"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/services"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	cli.NotificationFlags `embed:""`

	CookieSecure         bool   `help:"Mark session cookies Secure." env:"COOKIE_SECURE"`
	TrialDays            int    `help:"Premium trial length for new accounts." env:"TRIAL_DAYS" default:"0"`
	DefaultLanguage      string `help:"Fallback UI language." env:"DEFAULT_LANGUAGE" default:"en"`
	AllowOrigins         string `help:"Comma separated CORS origins." env:"CORS_ORIGINS"`
	OpenAIKey            string `name:"openai-key" help:"OpenAI compatible API key." env:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `name:"openai-base-url" help:"OpenAI compatible base URL." env:"OPENAI_BASE_URL"`
	OpenAIModel          string `name:"openai-model" help:"Model used for prompts." env:"OPENAI_MODEL"`
	NotificationsEnabled bool   `help:"Run the reminder dispatcher." env:"NOTIFICATIONS_ENABLED"`
}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	secretKey, err := resolveSecretKey()
	if err != nil {
		return err
	}
	port, err := resolvePort()
	if err != nil {
		return err
	}

	database, err := ctx.Database()
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	repos, err := ctx.Repositories()
	if err != nil {
		return err
	}

	i18nManager, err := i18n.NewManager(cmd.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	handler, err := api.NewHandler(database, i18nManager, api.Config{
		SecretKey:    secretKey,
		Location:     ctx.Location,
		CookieSecure: cmd.CookieSecure,
		TrialDays:    cmd.TrialDays,
		Prompt: services.PromptConfig{
			APIKey:  cmd.OpenAIKey,
			BaseURL: cmd.OpenAIBaseURL,
			Model:   cmd.OpenAIModel,
		},
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler, api.AppOptions{AllowOrigins: cmd.AllowOrigins})

	if accounts, err := repos.Users.CountUsers(); err != nil {
		logger.Warn("count accounts failed", "err", err)
	} else {
		logger.Info("database ready", "accounts", accounts)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	if cmd.NotificationsEnabled {
		dispatcher := services.NewDispatcher(repos.Users, repos.Notifications, i18nManager, ctx.Location, cmd.DispatcherConfig())
		dispatcher.Start(lifecycleCtx)
		logger.Info("reminder dispatcher started", "interval", cmd.DispatchInterval)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("mindful listening", "addr", "0.0.0.0:"+port, "db", ctx.DBPath, "tz", ctx.Location.String())
	return app.Listen(":" + port)
}
