package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSettingsPasswordMissing = errors.New("settings password missing")
	ErrSettingsPasswordInvalid = errors.New("settings password invalid")
	ErrResetFailed             = errors.New("reset failed")
	ErrDeleteAccountFailed     = errors.New("delete account failed")
	ErrProfileLoadFailed       = errors.New("load profile failed")
	ErrProfileSaveFailed       = errors.New("save profile failed")
	ErrPasswordUpdateFailed    = errors.New("update password failed")
	ErrInvalidSubscriptionTier = errors.New("invalid subscription tier")
	ErrSubscriptionSaveFailed  = errors.New("save subscription failed")
)

type SettingsUserRepository interface {
	FindByID(userID uint) (models.User, error)
	Save(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	UpdateSubscription(userID uint, tier string, startedAt *time.Time, endsAt *time.Time, trialEndsAt *time.Time) error
	DeleteAccountAndRelatedData(userID uint) error
}

type SettingsBadgeStore interface {
	DeleteByUser(userID uint) error
	CountByUser(userID uint) (int64, error)
}

type SettingsEntryStore interface {
	DeleteByUser(userID uint) error
	CountByUser(userID uint) (int64, error)
}

type SettingsCompletionStore interface {
	DeleteCompletionsByUser(userID uint) error
	CountCompletionsByUser(userID uint) (int64, error)
}

type SettingsService struct {
	users       SettingsUserRepository
	badges      SettingsBadgeStore
	entries     SettingsEntryStore
	completions SettingsCompletionStore
}

type ProfileUpdate struct {
	DisplayName         *string
	Timezone            *string
	Language            *string
	Goals               *[]string
	NotificationMorning *string
	NotificationEvening *string
}

func NewSettingsService(users SettingsUserRepository, badges SettingsBadgeStore, entries SettingsEntryStore, completions SettingsCompletionStore) *SettingsService {
	return &SettingsService{
		users:       users,
		badges:      badges,
		entries:     entries,
		completions: completions,
	}
}

func (service *SettingsService) ValidateDeleteAccountPassword(passwordHash string, rawPassword string) error {
	password := strings.TrimSpace(rawPassword)
	if password == "" {
		return ErrSettingsPasswordMissing
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return ErrSettingsPasswordInvalid
	}
	return nil
}

// ResetAllData removes badges, daily entries and habit completions, then
// re-reads to confirm nothing survived. Habits, goals and the profile stay.
func (service *SettingsService) ResetAllData(userID uint) error {
	if err := service.badges.DeleteByUser(userID); err != nil {
		return fmt.Errorf("%w: badges: %v", ErrResetFailed, err)
	}
	if err := service.entries.DeleteByUser(userID); err != nil {
		return fmt.Errorf("%w: entries: %v", ErrResetFailed, err)
	}
	if err := service.completions.DeleteCompletionsByUser(userID); err != nil {
		return fmt.Errorf("%w: habit completions: %v", ErrResetFailed, err)
	}

	remaining := int64(0)
	for _, count := range []func(uint) (int64, error){
		service.badges.CountByUser,
		service.entries.CountByUser,
		service.completions.CountCompletionsByUser,
	} {
		rows, err := count(userID)
		if err != nil {
			return fmt.Errorf("%w: verify: %v", ErrResetFailed, err)
		}
		remaining += rows
	}
	if remaining > 0 {
		logger.Warn("reset all data left rows behind", "user_id", userID, "remaining", remaining)
		return ErrDeletePolicyRejected
	}
	logger.Info("user data reset", "user_id", userID)
	return nil
}

// ResetBadges removes earned badges only; stars and entries are kept.
func (service *SettingsService) ResetBadges(userID uint) error {
	if err := service.badges.DeleteByUser(userID); err != nil {
		return fmt.Errorf("%w: badges: %v", ErrResetFailed, err)
	}
	remaining, err := service.badges.CountByUser(userID)
	if err != nil {
		return fmt.Errorf("%w: verify: %v", ErrResetFailed, err)
	}
	if remaining > 0 {
		logger.Warn("reset badges left rows behind", "user_id", userID, "remaining", remaining)
		return ErrDeletePolicyRejected
	}
	return nil
}

func (service *SettingsService) DeleteAccount(user *models.User, rawPassword string) error {
	if err := service.ValidateDeleteAccountPassword(user.PasswordHash, rawPassword); err != nil {
		return err
	}
	if err := service.users.DeleteAccountAndRelatedData(user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteAccountFailed, err)
	}
	logger.Info("account deleted", "user_id", user.ID)
	return nil
}

func (service *SettingsService) UpdateProfile(userID uint, update ProfileUpdate) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrProfileLoadFailed, err)
	}
	if err := service.ApplyProfileUpdate(&user, update); err != nil {
		return models.User{}, err
	}
	if err := service.users.Save(&user); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrProfileSaveFailed, err)
	}
	return user, nil
}

// ApplyProfileUpdate validates every provided field before touching user.
func (service *SettingsService) ApplyProfileUpdate(user *models.User, update ProfileUpdate) error {
	next := *user
	if update.DisplayName != nil {
		displayName, err := NormalizeDisplayName(*update.DisplayName)
		if err != nil {
			return err
		}
		next.DisplayName = displayName
	}
	if update.Timezone != nil {
		timezone, err := NormalizeTimezone(*update.Timezone)
		if err != nil {
			return err
		}
		next.Timezone = timezone
	}
	if update.Language != nil {
		language, err := NormalizeLanguage(*update.Language)
		if err != nil {
			return err
		}
		next.Language = language
	}
	if update.Goals != nil {
		goals, err := NormalizeProfileGoals(*update.Goals)
		if err != nil {
			return err
		}
		next.Goals = goals
	}
	if update.NotificationMorning != nil {
		value, err := NormalizeReminderTime(*update.NotificationMorning)
		if err != nil {
			return err
		}
		next.NotificationMorning = value
	}
	if update.NotificationEvening != nil {
		value, err := NormalizeReminderTime(*update.NotificationEvening)
		if err != nil {
			return err
		}
		next.NotificationEvening = value
	}
	*user = next
	return nil
}

func (service *SettingsService) ChangePassword(user *models.User, change PasswordChange) error {
	if err := ValidatePasswordChange(user.PasswordHash, change); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(change.New)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordUpdateFailed, err)
	}
	if err := service.users.UpdatePassword(user.ID, string(hash), false); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordUpdateFailed, err)
	}
	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	return nil
}

// ChangeTier switches the paid tier. Premium starts now and runs for
// duration, or indefinitely when duration is zero.
func (service *SettingsService) ChangeTier(userID uint, tier string, duration time.Duration, trialDays int, now time.Time) error {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if tier != models.TierFree && tier != models.TierPremium {
		return ErrInvalidSubscriptionTier
	}
	if trialDays < 0 || duration < 0 {
		return ErrInvalidSubscriptionTier
	}

	var startedAt, endsAt, trialEndsAt *time.Time
	if tier == models.TierPremium {
		started := now.UTC()
		startedAt = &started
		if duration > 0 {
			ends := started.Add(duration)
			endsAt = &ends
		}
	}
	if trialDays > 0 {
		trialEnd := now.UTC().AddDate(0, 0, trialDays)
		trialEndsAt = &trialEnd
	}

	if err := service.users.UpdateSubscription(userID, tier, startedAt, endsAt, trialEndsAt); err != nil {
		return fmt.Errorf("%w: %v", ErrSubscriptionSaveFailed, err)
	}
	logger.Info("subscription changed", "user_id", userID, "tier", tier, "trial_days", trialDays)
	return nil
}
