package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/datatypes"
)

const (
	maxReminderMessageLength = 200
	maxPushEndpointLength    = 2048
)

var (
	ErrReminderLimitReached    = errors.New("reminder limit reached")
	ErrReminderNotFound        = errors.New("reminder not found")
	ErrReminderMessageTooLong  = errors.New("reminder message too long")
	ErrInvalidPushSubscription = errors.New("invalid push subscription")
	ErrNotificationsLoadFailed = errors.New("notifications load failed")
	ErrNotificationSaveFailed  = errors.New("notification save failed")
)

type NotificationRepository interface {
	ListPreferences(userID uint) ([]models.NotificationPreference, error)
	CountPreferences(userID uint) (int64, error)
	FindPreferenceForUser(preferenceID uint, userID uint) (models.NotificationPreference, error)
	CreatePreference(preference *models.NotificationPreference) error
	SavePreference(preference *models.NotificationPreference) error
	DeletePreference(preferenceID uint, userID uint) error
	SaveSubscription(subscription *models.PushSubscription) error
	ListSubscriptions(userID uint) ([]models.PushSubscription, error)
	DeleteSubscription(userID uint, endpoint string) error
}

// ReminderInput carries a reminder create or patch. Nil fields keep their value.
type ReminderInput struct {
	Time    *string `json:"time"`
	Message *string `json:"message"`
	Enabled *bool   `json:"enabled"`
}

type NotificationService struct {
	notifications NotificationRepository
	badges        DayBadgeEvaluator
}

func NewNotificationService(notifications NotificationRepository, badges DayBadgeEvaluator) *NotificationService {
	return &NotificationService{notifications: notifications, badges: badges}
}

func (service *NotificationService) ListReminders(user *models.User) ([]models.NotificationPreference, error) {
	preferences, err := service.notifications.ListPreferences(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationsLoadFailed, err)
	}
	return preferences, nil
}

// CreateReminder stores a custom reminder and runs a badge pass for the
// customization badges. The per-plan cap counts every stored reminder,
// enabled or not.
func (service *NotificationService) CreateReminder(user *models.User, input ReminderInput, now time.Time) (models.NotificationPreference, []models.Badge, error) {
	if input.Time == nil {
		return models.NotificationPreference{}, nil, ErrInvalidReminderTime
	}

	count, err := service.notifications.CountPreferences(user.ID)
	if err != nil {
		return models.NotificationPreference{}, nil, fmt.Errorf("%w: %v", ErrNotificationsLoadFailed, err)
	}
	if count >= int64(MaxReminders(IsPremium(user.Profile(), now))) {
		return models.NotificationPreference{}, nil, ErrReminderLimitReached
	}

	preference := models.NotificationPreference{UserID: user.ID, Enabled: true}
	if err := applyReminderInput(&preference, input); err != nil {
		return models.NotificationPreference{}, nil, err
	}
	if err := service.notifications.CreatePreference(&preference); err != nil {
		return models.NotificationPreference{}, nil, fmt.Errorf("%w: %v", ErrNotificationSaveFailed, err)
	}

	newBadges := []models.Badge{}
	if service.badges != nil {
		newBadges = service.badges.Evaluate(user.ID, now)
	}
	return preference, newBadges, nil
}

func (service *NotificationService) UpdateReminder(user *models.User, preferenceID uint, input ReminderInput) (models.NotificationPreference, error) {
	preference, err := service.notifications.FindPreferenceForUser(preferenceID, user.ID)
	if err != nil {
		return models.NotificationPreference{}, fmt.Errorf("%w: %v", ErrReminderNotFound, err)
	}
	if err := applyReminderInput(&preference, input); err != nil {
		return models.NotificationPreference{}, err
	}
	if err := service.notifications.SavePreference(&preference); err != nil {
		return models.NotificationPreference{}, fmt.Errorf("%w: %v", ErrNotificationSaveFailed, err)
	}
	return preference, nil
}

func (service *NotificationService) DeleteReminder(user *models.User, preferenceID uint) error {
	if _, err := service.notifications.FindPreferenceForUser(preferenceID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrReminderNotFound, err)
	}
	if err := service.notifications.DeletePreference(preferenceID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSaveFailed, err)
	}
	return nil
}

// RegisterPushSubscription stores a browser push endpoint for the user. An
// endpoint already registered elsewhere moves to this user.
func (service *NotificationService) RegisterPushSubscription(user *models.User, endpoint string, keys map[string]string) (models.PushSubscription, error) {
	normalized, err := normalizePushEndpoint(endpoint)
	if err != nil {
		return models.PushSubscription{}, err
	}
	if keys == nil {
		keys = map[string]string{}
	}
	encodedKeys, err := json.Marshal(keys)
	if err != nil {
		return models.PushSubscription{}, fmt.Errorf("%w: %v", ErrInvalidPushSubscription, err)
	}

	subscription := models.PushSubscription{
		UserID:   user.ID,
		Endpoint: normalized,
		Keys:     datatypes.JSON(encodedKeys),
	}
	if err := service.notifications.SaveSubscription(&subscription); err != nil {
		return models.PushSubscription{}, fmt.Errorf("%w: %v", ErrNotificationSaveFailed, err)
	}
	return subscription, nil
}

func (service *NotificationService) UnregisterPushSubscription(user *models.User, endpoint string) error {
	normalized, err := normalizePushEndpoint(endpoint)
	if err != nil {
		return err
	}
	if err := service.notifications.DeleteSubscription(user.ID, normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSaveFailed, err)
	}
	return nil
}

func applyReminderInput(preference *models.NotificationPreference, input ReminderInput) error {
	if input.Time != nil {
		value, err := NormalizeReminderTime(*input.Time)
		if err != nil {
			return err
		}
		preference.Time = value
	}
	if input.Message != nil {
		message := strings.TrimSpace(*input.Message)
		if utf8.RuneCountInString(message) > maxReminderMessageLength {
			return ErrReminderMessageTooLong
		}
		preference.Message = message
	}
	if input.Enabled != nil {
		preference.Enabled = *input.Enabled
	}
	return nil
}

func normalizePushEndpoint(raw string) (string, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" || len(endpoint) > maxPushEndpointLength {
		return "", ErrInvalidPushSubscription
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return "", ErrInvalidPushSubscription
	}
	return endpoint, nil
}
