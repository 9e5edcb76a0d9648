package models

import "time"

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusArchived  = "archived"
)

const (
	HabitFrequencyDaily  = "daily"
	HabitFrequencyWeekly = "weekly"

	DefaultHabitIcon = "✓"
)

type Goal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `gorm:"type:date" json:"target_date"`
	Status      string     `gorm:"not null;default:active" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Habit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	GoalID      *uint     `json:"goal_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Icon        string    `gorm:"not null;default:✓" json:"icon"`
	Frequency   string    `gorm:"not null;default:daily" json:"frequency"`
	TargetCount int       `gorm:"not null;default:1" json:"target_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HabitCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:uidx_habit_completions_user_habit_date" json:"user_id"`
	HabitID       uint      `gorm:"not null;uniqueIndex:uidx_habit_completions_user_habit_date" json:"habit_id"`
	CompletedDate time.Time `gorm:"type:date;not null;uniqueIndex:uidx_habit_completions_user_habit_date" json:"completed_date"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}
