package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Time      string    `gorm:"not null" json:"time"`
	Message   string    `json:"message"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PushSubscription struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Endpoint  string         `gorm:"uniqueIndex;not null" json:"endpoint"`
	Keys      datatypes.JSON `json:"keys"`
	CreatedAt time.Time      `json:"created_at"`
}
