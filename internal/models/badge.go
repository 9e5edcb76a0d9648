package models

import "time"

const (
	RequirementStreak     = "streak"
	RequirementCompletion = "completion"
	RequirementMilestone  = "milestone"
)

const (
	BadgeCategoryGettingStarted = "getting_started"
	BadgeCategoryConsistency    = "consistency"
	BadgeCategoryStars          = "stars"
	BadgeCategoryPremium        = "premium"
	BadgeCategoryData           = "data"
	BadgeCategoryCustomization  = "customization"
	BadgeCategoryHabits         = "habits"
)

type Badge struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"uniqueIndex;not null" json:"name"`
	Description      string    `gorm:"not null" json:"description"`
	Icon             string    `gorm:"not null" json:"icon"`
	RequirementType  string    `gorm:"not null" json:"requirement_type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	Tier             string    `gorm:"not null;default:free" json:"tier"`
	Category         string    `gorm:"not null" json:"category"`
	CreatedAt        time.Time `json:"created_at"`
}

func (badge Badge) IsPremium() bool {
	return badge.Tier == TierPremium
}

type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_user_badges_user_badge" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:uidx_user_badges_user_badge" json:"badge_id"`
	EarnedAt  time.Time `gorm:"not null" json:"earned_at"`
	IsShared  bool      `gorm:"not null;default:false" json:"is_shared"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultBadgeCatalog is the catalog seeded on first boot. Rows are matched by name.
func DefaultBadgeCatalog() []Badge {
	return []Badge{
		{Name: "First Steps", Description: "Set your first morning intention", Icon: "🌅", RequirementType: RequirementMilestone, RequirementValue: 1, Tier: TierFree, Category: BadgeCategoryGettingStarted},
		{Name: "Getting Started", Description: "Complete your first full day", Icon: "🌱", RequirementType: RequirementCompletion, RequirementValue: 1, Tier: TierFree, Category: BadgeCategoryGettingStarted},
		{Name: "Three Day Streak", Description: "Complete 3 full days in a row", Icon: "🔥", RequirementType: RequirementStreak, RequirementValue: 3, Tier: TierFree, Category: BadgeCategoryConsistency},
		{Name: "Week Warrior", Description: "Complete 7 full days in a row", Icon: "⚔️", RequirementType: RequirementStreak, RequirementValue: 7, Tier: TierFree, Category: BadgeCategoryConsistency},
		{Name: "Month Master", Description: "Complete 30 full days in a row", Icon: "🏆", RequirementType: RequirementStreak, RequirementValue: 30, Tier: TierPremium, Category: BadgeCategoryConsistency},
		{Name: "Dedicated", Description: "Complete 10 full days", Icon: "💪", RequirementType: RequirementCompletion, RequirementValue: 10, Tier: TierFree, Category: BadgeCategoryConsistency},
		{Name: "Century Club", Description: "Complete 100 full days", Icon: "💯", RequirementType: RequirementCompletion, RequirementValue: 100, Tier: TierPremium, Category: BadgeCategoryConsistency},
		{Name: "Star Collector", Description: "Earn 50 stars", Icon: "⭐", RequirementType: RequirementMilestone, RequirementValue: 50, Tier: TierFree, Category: BadgeCategoryStars},
		{Name: "Superstar", Description: "Earn 250 stars", Icon: "🌟", RequirementType: RequirementMilestone, RequirementValue: 250, Tier: TierPremium, Category: BadgeCategoryStars},
		{Name: "Premium Pioneer", Description: "Unlock premium features", Icon: "👑", RequirementType: RequirementMilestone, RequirementValue: 1, Tier: TierPremium, Category: BadgeCategoryPremium},
		{Name: "Data Explorer", Description: "Export your data for the first time", Icon: "📊", RequirementType: RequirementMilestone, RequirementValue: 1, Tier: TierPremium, Category: BadgeCategoryData},
		{Name: "Data Analyst", Description: "Export your data 5 times", Icon: "📈", RequirementType: RequirementMilestone, RequirementValue: 5, Tier: TierPremium, Category: BadgeCategoryData},
		{Name: "Reminder Rookie", Description: "Create your first custom reminder", Icon: "⏰", RequirementType: RequirementMilestone, RequirementValue: 1, Tier: TierFree, Category: BadgeCategoryCustomization},
		{Name: "Notification Ninja", Description: "Create 3 custom reminders", Icon: "🥷", RequirementType: RequirementMilestone, RequirementValue: 3, Tier: TierPremium, Category: BadgeCategoryCustomization},
		{Name: "Multi-Tracker", Description: "Track 3 habits at once", Icon: "🎯", RequirementType: RequirementMilestone, RequirementValue: 3, Tier: TierPremium, Category: BadgeCategoryHabits},
		{Name: "Habit Hero", Description: "Keep a habit going for 7 days", Icon: "🦸", RequirementType: RequirementStreak, RequirementValue: 7, Tier: TierPremium, Category: BadgeCategoryHabits},
	}
}
