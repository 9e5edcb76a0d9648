package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	reminderKindMorning = "morning"
	reminderKindEvening = "evening"
	reminderKindCustom  = "custom"

	pushTTLSeconds         = 86400
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultDispatchEvery   = time.Minute
	maxSentKeys            = 5000
)

type DispatcherUserReader interface {
	ListAll() ([]models.User, error)
}

type DispatcherNotificationReader interface {
	ListPreferences(userID uint) ([]models.NotificationPreference, error)
	ListSubscriptions(userID uint) ([]models.PushSubscription, error)
}

type Translator interface {
	Translate(language string, key string) string
}

type DispatcherConfig struct {
	TelegramBotToken string
	TelegramChatID   string
	TelegramBaseURL  string
	IconURL          string
	Interval         time.Duration
	Client           *http.Client
}

// DispatchResult counts one dispatch pass. Matched counts reminders due this
// minute, Sent and Failed count individual deliveries.
type DispatchResult struct {
	Matched int `json:"matched"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

type pushPayload struct {
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Tag   string `json:"tag"`
}

type telegramMessage struct {
	ChatID string `url:"chat_id"`
	Text   string `url:"text"`
}

type dueReminder struct {
	tag  string
	body string
}

// Dispatcher delivers morning, evening and custom reminders at each user's
// local wall-clock time.
type Dispatcher struct {
	users         DispatcherUserReader
	notifications DispatcherNotificationReader
	translator    Translator
	location      *time.Location
	config        DispatcherConfig
	client        *http.Client

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewDispatcher(users DispatcherUserReader, notifications DispatcherNotificationReader, translator Translator, location *time.Location, config DispatcherConfig) *Dispatcher {
	if location == nil {
		location = time.Local
	}
	if config.Interval <= 0 {
		config.Interval = defaultDispatchEvery
	}
	if strings.TrimSpace(config.TelegramBaseURL) == "" {
		config.TelegramBaseURL = defaultTelegramBaseURL
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}

	return &Dispatcher{
		users:         users,
		notifications: notifications,
		translator:    translator,
		location:      location,
		config:        config,
		client:        client,
		sent:          make(map[string]time.Time),
	}
}

func (dispatcher *Dispatcher) telegramEnabled() bool {
	return dispatcher.config.TelegramBotToken != "" && dispatcher.config.TelegramChatID != ""
}

// Start runs a pass every interval until ctx is cancelled.
func (dispatcher *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(dispatcher.config.Interval)
	go func() {
		defer ticker.Stop()

		dispatcher.Run(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ticker.C:
				dispatcher.Run(ctx, tick)
			}
		}
	}()
}

// Run performs one dispatch pass for the minute containing now.
func (dispatcher *Dispatcher) Run(ctx context.Context, now time.Time) DispatchResult {
	result := DispatchResult{}

	users, err := dispatcher.users.ListAll()
	if err != nil {
		logger.Error("notifications: list users failed", "err", err)
		return result
	}

	for index := range users {
		if ctx.Err() != nil {
			return result
		}
		user := &users[index]
		due := dispatcher.dueReminders(user, now)
		if len(due) == 0 {
			continue
		}

		subscriptions, err := dispatcher.notifications.ListSubscriptions(user.ID)
		if err != nil {
			logger.Warn("notifications: list subscriptions failed", "user_id", user.ID, "err", err)
			subscriptions = nil
		}

		for _, reminder := range due {
			result.Matched++
			title := dispatcher.translate(user.Language, "app.title")
			for _, subscription := range subscriptions {
				if err := dispatcher.sendPush(ctx, subscription.Endpoint, title, reminder); err != nil {
					result.Failed++
					logger.Warn("notifications: push delivery failed", "user_id", user.ID, "tag", reminder.tag, "err", err)
					continue
				}
				result.Sent++
			}
			if dispatcher.telegramEnabled() {
				if err := dispatcher.sendTelegram(ctx, title+"\n"+reminder.body); err != nil {
					result.Failed++
					logger.Warn("notifications: telegram delivery failed", "user_id", user.ID, "tag", reminder.tag, "err", err)
					continue
				}
				result.Sent++
			}
		}
	}

	if result.Matched > 0 {
		logger.Info("notifications: dispatched", "matched", result.Matched, "sent", result.Sent, "failed", result.Failed)
	}
	return result
}

func (dispatcher *Dispatcher) dueReminders(user *models.User, now time.Time) []dueReminder {
	location := UserLocation(user, dispatcher.location)
	local := now.In(location)
	clock := local.Format(reminderTimeLayout)
	today := CalendarDate(local, location)

	due := make([]dueReminder, 0, 2)
	if user.NotificationMorning == clock {
		due = dispatcher.appendDue(due, user, today, reminderKindMorning, "morning-reminder", dispatcher.translate(user.Language, "notification.morning"))
	}
	if user.NotificationEvening == clock {
		due = dispatcher.appendDue(due, user, today, reminderKindEvening, "evening-reminder", dispatcher.translate(user.Language, "notification.evening"))
	}

	preferences, err := dispatcher.notifications.ListPreferences(user.ID)
	if err != nil {
		logger.Warn("notifications: list reminders failed", "user_id", user.ID, "err", err)
		return due
	}
	limit := MaxReminders(IsPremium(user.Profile(), now))
	for index, preference := range preferences {
		if index >= limit {
			break
		}
		if !preference.Enabled || preference.Time != clock {
			continue
		}
		body := strings.TrimSpace(preference.Message)
		if body == "" {
			body = dispatcher.translate(user.Language, "notification.custom")
		}
		kind := reminderKindCustom + ":" + strconv.FormatUint(uint64(preference.ID), 10)
		due = dispatcher.appendDue(due, user, today, kind, "custom-reminder", body)
	}
	return due
}

func (dispatcher *Dispatcher) appendDue(due []dueReminder, user *models.User, today time.Time, kind string, tag string, body string) []dueReminder {
	key := fmt.Sprintf("%s:%d:%s", kind, user.ID, FormatCalendarDate(today))
	if !dispatcher.shouldSend(key, today) {
		return due
	}
	return append(due, dueReminder{tag: tag, body: body})
}

func (dispatcher *Dispatcher) translate(language string, key string) string {
	if dispatcher.translator == nil {
		return key
	}
	return dispatcher.translator.Translate(language, key)
}

func (dispatcher *Dispatcher) shouldSend(key string, today time.Time) bool {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	if sentOn, ok := dispatcher.sent[key]; ok && sameCalendarDay(sentOn, today) {
		return false
	}

	dispatcher.sent[key] = today
	if len(dispatcher.sent) > maxSentKeys {
		dispatcher.sent = map[string]time.Time{key: today}
	}
	return true
}

func (dispatcher *Dispatcher) sendPush(ctx context.Context, endpoint string, title string, reminder dueReminder) error {
	body, err := json.Marshal(pushPayload{Notification: pushNotification{
		Title: title,
		Body:  reminder.body,
		Icon:  dispatcher.config.IconURL,
		Tag:   reminder.tag,
	}})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", strconv.Itoa(pushTTLSeconds))

	return dispatcher.do(req, "push")
}

func (dispatcher *Dispatcher) sendTelegram(ctx context.Context, message string) error {
	values, err := query.Values(telegramMessage{ChatID: dispatcher.config.TelegramChatID, Text: message})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(dispatcher.config.TelegramBaseURL, "/"), dispatcher.config.TelegramBotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return dispatcher.do(req, "telegram")
}

func (dispatcher *Dispatcher) do(req *http.Request, channel string) error {
	resp, err := dispatcher.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s status %d: %s", channel, resp.StatusCode, string(body))
	}
	return nil
}
