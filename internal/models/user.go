package models

import "time"

const (
	RoleMember = "member"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

const (
	DefaultMorningReminder = "07:00"
	DefaultEveningReminder = "20:00"
)

type User struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Email                 string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"not null" json:"-"`
	DisplayName           string     `json:"display_name"`
	Role                  string     `gorm:"not null;default:member" json:"role"`
	Timezone              string     `json:"timezone"`
	Language              string     `gorm:"not null;default:en" json:"language"`
	Goals                 []string   `gorm:"serializer:json" json:"goals"`
	NotificationMorning   string     `gorm:"not null;default:07:00" json:"notification_morning"`
	NotificationEvening   string     `gorm:"not null;default:20:00" json:"notification_evening"`
	SubscriptionTier      string     `gorm:"not null;default:free" json:"subscription_tier"`
	SubscriptionStartedAt *time.Time `json:"subscription_started_at"`
	SubscriptionEndsAt    *time.Time `json:"subscription_ends_at"`
	TrialEndsAt           *time.Time `json:"trial_ends_at"`
	MustChangePassword    bool       `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt             time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Profile is the subscription view of a user consumed by the subscription gate.
type Profile struct {
	Tier               string
	SubscriptionEndsAt *time.Time
	TrialEndsAt        *time.Time
}

func (user User) Profile() Profile {
	return Profile{
		Tier:               user.SubscriptionTier,
		SubscriptionEndsAt: user.SubscriptionEndsAt,
		TrialEndsAt:        user.TrialEndsAt,
	}
}
