package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

type notificationRepositoryStub struct {
	preferences   []models.NotificationPreference
	subscriptions []models.PushSubscription
	nextID        uint
	listErr       error
}

func (stub *notificationRepositoryStub) ListPreferences(userID uint) ([]models.NotificationPreference, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	result := make([]models.NotificationPreference, 0)
	for _, preference := range stub.preferences {
		if preference.UserID == userID {
			result = append(result, preference)
		}
	}
	return result, nil
}

func (stub *notificationRepositoryStub) CountPreferences(userID uint) (int64, error) {
	preferences, err := stub.ListPreferences(userID)
	return int64(len(preferences)), err
}

func (stub *notificationRepositoryStub) FindPreferenceForUser(preferenceID uint, userID uint) (models.NotificationPreference, error) {
	for _, preference := range stub.preferences {
		if preference.ID == preferenceID && preference.UserID == userID {
			return preference, nil
		}
	}
	return models.NotificationPreference{}, errStubNotFound
}

func (stub *notificationRepositoryStub) CreatePreference(preference *models.NotificationPreference) error {
	stub.nextID++
	preference.ID = stub.nextID
	stub.preferences = append(stub.preferences, *preference)
	return nil
}

func (stub *notificationRepositoryStub) SavePreference(preference *models.NotificationPreference) error {
	for index := range stub.preferences {
		if stub.preferences[index].ID == preference.ID {
			stub.preferences[index] = *preference
		}
	}
	return nil
}

func (stub *notificationRepositoryStub) DeletePreference(preferenceID uint, userID uint) error {
	kept := stub.preferences[:0]
	for _, preference := range stub.preferences {
		if preference.ID == preferenceID && preference.UserID == userID {
			continue
		}
		kept = append(kept, preference)
	}
	stub.preferences = kept
	return nil
}

func (stub *notificationRepositoryStub) SaveSubscription(subscription *models.PushSubscription) error {
	for index := range stub.subscriptions {
		if stub.subscriptions[index].Endpoint == subscription.Endpoint {
			stub.subscriptions[index].UserID = subscription.UserID
			stub.subscriptions[index].Keys = subscription.Keys
			return nil
		}
	}
	stub.subscriptions = append(stub.subscriptions, *subscription)
	return nil
}

func (stub *notificationRepositoryStub) ListSubscriptions(userID uint) ([]models.PushSubscription, error) {
	result := make([]models.PushSubscription, 0)
	for _, subscription := range stub.subscriptions {
		if subscription.UserID == userID {
			result = append(result, subscription)
		}
	}
	return result, nil
}

func (stub *notificationRepositoryStub) DeleteSubscription(userID uint, endpoint string) error {
	kept := stub.subscriptions[:0]
	for _, subscription := range stub.subscriptions {
		if subscription.UserID == userID && subscription.Endpoint == endpoint {
			continue
		}
		kept = append(kept, subscription)
	}
	stub.subscriptions = kept
	return nil
}

type stubDispatcherUsers struct {
	users []models.User
}

func (stub *stubDispatcherUsers) ListAll() ([]models.User, error) {
	return stub.users, nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(language string, key string) string {
	return language + ":" + key
}

func stringPtr(value string) *string {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func TestCreateReminderRespectsPlanLimit(t *testing.T) {
	repo := &notificationRepositoryStub{}
	service := NewNotificationService(repo, nil)
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	free := &models.User{ID: 1, SubscriptionTier: models.TierFree}

	for index := 0; index < MaxReminders(false); index++ {
		if _, _, err := service.CreateReminder(free, ReminderInput{Time: stringPtr("9:30")}, now); err != nil {
			t.Fatalf("CreateReminder() #%d unexpected error: %v", index, err)
		}
	}
	if _, _, err := service.CreateReminder(free, ReminderInput{Time: stringPtr("10:00")}, now); !errors.Is(err, ErrReminderLimitReached) {
		t.Fatalf("expected ErrReminderLimitReached, got %v", err)
	}
	if repo.preferences[0].Time != "09:30" || !repo.preferences[0].Enabled {
		t.Fatalf("expected normalized enabled reminder, got %#v", repo.preferences[0])
	}

	premium := premiumUser()
	premium.ID = 1
	if _, _, err := service.CreateReminder(&premium, ReminderInput{Time: stringPtr("10:00")}, now); err != nil {
		t.Fatalf("expected premium user to get a higher limit, got %v", err)
	}
}

func TestCreateReminderRunsBadgePass(t *testing.T) {
	repo := &notificationRepositoryStub{}
	badges := &dayBadgeEvaluatorStub{badges: []models.Badge{{Name: "Reminder Rookie"}}}
	service := NewNotificationService(repo, badges)
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: 1}

	if _, _, err := service.CreateReminder(user, ReminderInput{Time: stringPtr("31:00")}, now); !errors.Is(err, ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime, got %v", err)
	}
	if badges.calls != 0 {
		t.Fatalf("expected no badge pass for a rejected reminder, got %d", badges.calls)
	}

	_, newBadges, err := service.CreateReminder(user, ReminderInput{Time: stringPtr("08:15")}, now)
	if err != nil {
		t.Fatalf("CreateReminder() unexpected error: %v", err)
	}
	if badges.calls != 1 {
		t.Fatalf("expected one badge pass after create, got %d", badges.calls)
	}
	if len(newBadges) != 1 || newBadges[0].Name != "Reminder Rookie" {
		t.Fatalf("expected awarded badge returned, got %#v", newBadges)
	}
}

func TestReminderValidationAndOwnership(t *testing.T) {
	repo := &notificationRepositoryStub{}
	service := NewNotificationService(repo, nil)
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	owner := &models.User{ID: 1}
	other := &models.User{ID: 2}

	if _, _, err := service.CreateReminder(owner, ReminderInput{}, now); !errors.Is(err, ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime for missing time, got %v", err)
	}
	if _, _, err := service.CreateReminder(owner, ReminderInput{Time: stringPtr("25:00")}, now); !errors.Is(err, ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime, got %v", err)
	}

	created, _, err := service.CreateReminder(owner, ReminderInput{Time: stringPtr("08:00"), Message: stringPtr(" Check spending ")}, now)
	if err != nil {
		t.Fatalf("CreateReminder() unexpected error: %v", err)
	}
	if created.Message != "Check spending" {
		t.Fatalf("expected trimmed message, got %q", created.Message)
	}

	if _, err := service.UpdateReminder(other, created.ID, ReminderInput{Enabled: boolPtr(false)}); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("expected ErrReminderNotFound for foreign reminder, got %v", err)
	}
	updated, err := service.UpdateReminder(owner, created.ID, ReminderInput{Enabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("UpdateReminder() unexpected error: %v", err)
	}
	if updated.Enabled || updated.Time != "08:00" {
		t.Fatalf("expected only enabled flag changed, got %#v", updated)
	}

	if err := service.DeleteReminder(owner, created.ID); err != nil {
		t.Fatalf("DeleteReminder() unexpected error: %v", err)
	}
	if err := service.DeleteReminder(owner, created.ID); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("expected ErrReminderNotFound after delete, got %v", err)
	}
}

func TestPushSubscriptionRegistration(t *testing.T) {
	repo := &notificationRepositoryStub{}
	service := NewNotificationService(repo, nil)
	user := &models.User{ID: 3}

	if _, err := service.RegisterPushSubscription(user, "ftp://push.example.com/x", nil); !errors.Is(err, ErrInvalidPushSubscription) {
		t.Fatalf("expected ErrInvalidPushSubscription, got %v", err)
	}

	subscription, err := service.RegisterPushSubscription(user, "https://push.example.com/abc", map[string]string{"p256dh": "key", "auth": "secret"})
	if err != nil {
		t.Fatalf("RegisterPushSubscription() unexpected error: %v", err)
	}
	keys := map[string]string{}
	if err := json.Unmarshal(subscription.Keys, &keys); err != nil || keys["auth"] != "secret" {
		t.Fatalf("expected stored keys, got %s (%v)", string(subscription.Keys), err)
	}

	if err := service.UnregisterPushSubscription(user, "https://push.example.com/abc"); err != nil {
		t.Fatalf("UnregisterPushSubscription() unexpected error: %v", err)
	}
	if len(repo.subscriptions) != 0 {
		t.Fatalf("expected subscription removed, got %d", len(repo.subscriptions))
	}
}

type capturedRequest struct {
	path        string
	ttl         string
	contentType string
	body        string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	captured := make([]capturedRequest, 0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			path:        r.URL.Path,
			ttl:         r.Header.Get("TTL"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func TestDispatcherSendsMorningPushAtLocalTime(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusCreated)
	users := &stubDispatcherUsers{users: []models.User{
		{ID: 1, Language: "en", Timezone: "America/New_York", NotificationMorning: "07:00", NotificationEvening: "20:00"},
		{ID: 2, Language: "en", Timezone: "Europe/Berlin", NotificationMorning: "07:00", NotificationEvening: "20:00"},
	}}
	repo := &notificationRepositoryStub{subscriptions: []models.PushSubscription{
		{UserID: 1, Endpoint: server.URL + "/push/one"},
		{UserID: 2, Endpoint: server.URL + "/push/two"},
	}}
	dispatcher := NewDispatcher(users, repo, stubTranslator{}, time.UTC, DispatcherConfig{IconURL: "/icon.png"})

	// 11:00 UTC is 07:00 in New York during daylight saving time.
	now := time.Date(2026, time.June, 1, 11, 0, 30, 0, time.UTC)
	result := dispatcher.Run(context.Background(), now)
	if result != (DispatchResult{Matched: 1, Sent: 1}) {
		t.Fatalf("unexpected result %#v", result)
	}

	captured := requests()
	if len(captured) != 1 || captured[0].path != "/push/one" {
		t.Fatalf("expected one push to /push/one, got %#v", captured)
	}
	if captured[0].ttl != "86400" || captured[0].contentType != "application/json" {
		t.Fatalf("unexpected push headers %#v", captured[0])
	}
	payload := pushPayload{}
	if err := json.Unmarshal([]byte(captured[0].body), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Notification.Tag != "morning-reminder" || payload.Notification.Body != "en:notification.morning" || payload.Notification.Title != "en:app.title" {
		t.Fatalf("unexpected payload %#v", payload.Notification)
	}

	again := dispatcher.Run(context.Background(), now.Add(10*time.Second))
	if again.Matched != 0 {
		t.Fatalf("expected same-day dedup, got %#v", again)
	}
}

func TestDispatcherCustomRemindersAndFailures(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusGone)
	users := &stubDispatcherUsers{users: []models.User{{ID: 1, Language: "ru", NotificationMorning: "07:00", NotificationEvening: "20:00"}}}
	repo := &notificationRepositoryStub{
		preferences: []models.NotificationPreference{
			{ID: 1, UserID: 1, Time: "12:15", Enabled: true},
			{ID: 2, UserID: 1, Time: "12:15", Enabled: false, Message: "disabled"},
			{ID: 3, UserID: 1, Time: "12:15", Enabled: true, Message: "over the free limit"},
		},
		subscriptions: []models.PushSubscription{{UserID: 1, Endpoint: server.URL + "/gone"}},
	}
	dispatcher := NewDispatcher(users, repo, stubTranslator{}, time.UTC, DispatcherConfig{})

	result := dispatcher.Run(context.Background(), time.Date(2026, time.June, 1, 12, 15, 0, 0, time.UTC))
	if result != (DispatchResult{Matched: 1, Failed: 1}) {
		t.Fatalf("unexpected result %#v", result)
	}
	captured := requests()
	if len(captured) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(captured))
	}
	payload := pushPayload{}
	if err := json.Unmarshal([]byte(captured[0].body), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Notification.Body != "ru:notification.custom" || payload.Notification.Tag != "custom-reminder" {
		t.Fatalf("unexpected payload %#v", payload.Notification)
	}
}

func TestDispatcherTelegramUsesFormEncoding(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	users := &stubDispatcherUsers{users: []models.User{{ID: 1, Language: "en", NotificationMorning: "07:00", NotificationEvening: "20:00"}}}
	dispatcher := NewDispatcher(users, &notificationRepositoryStub{}, stubTranslator{}, time.UTC, DispatcherConfig{
		TelegramBotToken: "token",
		TelegramChatID:   "42",
		TelegramBaseURL:  server.URL,
	})

	result := dispatcher.Run(context.Background(), time.Date(2026, time.June, 1, 20, 0, 0, 0, time.UTC))
	if result != (DispatchResult{Matched: 1, Sent: 1}) {
		t.Fatalf("unexpected result %#v", result)
	}
	captured := requests()
	if len(captured) != 1 || captured[0].path != "/bottoken/sendMessage" {
		t.Fatalf("unexpected telegram request %#v", captured)
	}
	form, err := url.ParseQuery(captured[0].body)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if form.Get("chat_id") != "42" || form.Get("text") != "en:app.title\nen:notification.evening" {
		t.Fatalf("unexpected telegram form %v", form)
	}
}
