package services

import (
	"errors"
	"math"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

const (
	FeatureCustomAIPrompts   = "custom_ai_prompts"
	FeatureAdvancedAnalytics = "advanced_analytics"
	FeatureDataExport        = "data_export"
	FeatureMultipleReminders = "multiple_reminders"
	FeaturePremiumBadges     = "premium_badges"
	FeatureMoneyCoach        = "money_coach"
	FeatureHabitTracking     = "habit_tracking"
)

var ErrPremiumRequired = errors.New("premium subscription required")

const (
	premiumReminderLimit = 5
	freeReminderLimit    = 2
)

var premiumFeatures = map[string]struct{}{
	FeatureCustomAIPrompts:   {},
	FeatureAdvancedAnalytics: {},
	FeatureDataExport:        {},
	FeatureMultipleReminders: {},
	FeaturePremiumBadges:     {},
	FeatureMoneyCoach:        {},
	FeatureHabitTracking:     {},
}

// IsPremium treats an unexpired trial as premium before looking at the paid tier.
func IsPremium(profile models.Profile, now time.Time) bool {
	if IsOnTrial(profile, now) {
		return true
	}
	if profile.Tier != models.TierPremium {
		return false
	}
	return profile.SubscriptionEndsAt == nil || profile.SubscriptionEndsAt.After(now)
}

func IsOnTrial(profile models.Profile, now time.Time) bool {
	return profile.TrialEndsAt != nil && profile.TrialEndsAt.After(now)
}

// TrialDaysRemaining rounds partial days up. It is zero when no trial is running.
func TrialDaysRemaining(profile models.Profile, now time.Time) int {
	if !IsOnTrial(profile, now) {
		return 0
	}
	remaining := profile.TrialEndsAt.Sub(now).Hours() / 24
	return int(math.Ceil(remaining))
}

func MaxReminders(isPremium bool) int {
	if isPremium {
		return premiumReminderLimit
	}
	return freeReminderLimit
}

func CanExportData(isPremium bool) bool {
	return isPremium
}

// CheckAccess reports whether a feature key is usable. Unknown keys are free.
func CheckAccess(feature string, isPremium bool) bool {
	if _, gated := premiumFeatures[feature]; gated {
		return isPremium
	}
	return true
}

// RequireFeature returns ErrPremiumRequired when user cannot use feature at now.
func RequireFeature(user *models.User, feature string, now time.Time) error {
	if user == nil || !CheckAccess(feature, IsPremium(user.Profile(), now)) {
		return ErrPremiumRequired
	}
	return nil
}

// SubscriptionStatus is the subscription view returned with the profile.
type SubscriptionStatus struct {
	Tier               string     `json:"tier"`
	IsPremium          bool       `json:"is_premium"`
	IsOnTrial          bool       `json:"is_on_trial"`
	TrialDaysRemaining int        `json:"trial_days_remaining"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	MaxReminders       int        `json:"max_reminders"`
	CanExportData      bool       `json:"can_export_data"`
}

func BuildSubscriptionStatus(profile models.Profile, now time.Time) SubscriptionStatus {
	premium := IsPremium(profile, now)
	tier := profile.Tier
	if tier == "" {
		tier = models.TierFree
	}
	return SubscriptionStatus{
		Tier:               tier,
		IsPremium:          premium,
		IsOnTrial:          IsOnTrial(profile, now),
		TrialDaysRemaining: TrialDaysRemaining(profile, now),
		SubscriptionEndsAt: profile.SubscriptionEndsAt,
		MaxReminders:       MaxReminders(premium),
		CanExportData:      CanExportData(premium),
	}
}
