package models

import "time"

const (
	SenderUser  = "user"
	SenderCoach = "coach"

	DefaultCoachMessageLimit = 10
)

type AIPromptHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	QuestionAsked string    `gorm:"not null" json:"question_asked"`
	AIResponse    string    `gorm:"column:ai_response;not null" json:"ai_response"`
	CreatedAt     time.Time `json:"created_at"`
}

type CoachAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CoachName    string    `gorm:"not null" json:"coach_name"`
	MessageCount int       `gorm:"not null;default:0" json:"message_count"`
	MessageLimit int       `gorm:"not null;default:10" json:"message_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CoachMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	Message      string    `gorm:"not null" json:"message"`
	SenderType   string    `gorm:"not null" json:"sender_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AIPromptHistory) TableName() string {
	return "ai_prompt_history"
}
