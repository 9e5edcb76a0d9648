package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/mindful/internal/i18n"
	"github.com/terraincognita07/mindful/internal/services"
)

// NotificationFlags configures reminder delivery. Shared by serve and notify.
type NotificationFlags struct {
	TelegramBotToken string        `name:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" help:"Bot token for operator Telegram delivery."`
	TelegramChatID   string        `name:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" help:"Chat that receives Telegram reminders."`
	PushIconURL      string        `name:"push-icon-url" env:"PUSH_ICON_URL" help:"Icon shown in push notifications."`
	DispatchInterval time.Duration `name:"dispatch-interval" env:"NOTIFICATION_INTERVAL" default:"1m" help:"How often reminders are checked."`
}

func (flags NotificationFlags) DispatcherConfig() services.DispatcherConfig {
	return services.DispatcherConfig{
		TelegramBotToken: flags.TelegramBotToken,
		TelegramChatID:   flags.TelegramChatID,
		IconURL:          flags.PushIconURL,
		Interval:         flags.DispatchInterval,
	}
}

// NotifyCmd runs a single dispatch pass, for cron style deployments.
type NotifyCmd struct {
	NotificationFlags `embed:""`
	Language          string `env:"DEFAULT_LANGUAGE" default:"en" help:"Fallback language for reminder text."`
}

func (cmd *NotifyCmd) Run(ctx *Context) error {
	repos, err := ctx.Repositories()
	if err != nil {
		return err
	}
	translator, err := i18n.NewManager(cmd.Language)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	dispatcher := services.NewDispatcher(repos.Users, repos.Notifications, translator, ctx.location(), cmd.DispatcherConfig())
	result := dispatcher.Run(context.Background(), ctx.now())
	fmt.Fprintf(ctx.Out, "Reminders due: %d, sent: %d, failed: %d\n", result.Matched, result.Sent, result.Failed)
	return nil
}
