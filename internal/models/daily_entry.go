package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActionStatus is the tri-state outcome of the day's committed action.
// It is stored as a nullable boolean: NULL, false, true.
type ActionStatus int8

const (
	ActionUncommitted ActionStatus = iota
	ActionFailed
	ActionSucceeded
)

func (status ActionStatus) String() string {
	switch status {
	case ActionFailed:
		return "failed"
	case ActionSucceeded:
		return "succeeded"
	default:
		return "uncommitted"
	}
}

func (status ActionStatus) Value() (driver.Value, error) {
	switch status {
	case ActionFailed:
		return false, nil
	case ActionSucceeded:
		return true, nil
	default:
		return nil, nil
	}
}

func (status *ActionStatus) Scan(source any) error {
	switch value := source.(type) {
	case nil:
		*status = ActionUncommitted
	case bool:
		*status = actionStatusFromBool(value)
	case int64:
		*status = actionStatusFromBool(value != 0)
	case []byte:
		return status.scanText(string(value))
	case string:
		return status.scanText(value)
	default:
		return fmt.Errorf("unsupported action status type %T", source)
	}
	return nil
}

func (status *ActionStatus) scanText(raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		*status = ActionUncommitted
	case "1", "true":
		*status = ActionSucceeded
	case "0", "false":
		*status = ActionFailed
	default:
		return fmt.Errorf("invalid action status %q", raw)
	}
	return nil
}

func (status ActionStatus) MarshalJSON() ([]byte, error) {
	switch status {
	case ActionFailed:
		return []byte("false"), nil
	case ActionSucceeded:
		return []byte("true"), nil
	default:
		return []byte("null"), nil
	}
}

func (status *ActionStatus) UnmarshalJSON(data []byte) error {
	var value *bool
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == nil {
		*status = ActionUncommitted
		return nil
	}
	*status = actionStatusFromBool(*value)
	return nil
}

func actionStatusFromBool(value bool) ActionStatus {
	if value {
		return ActionSucceeded
	}
	return ActionFailed
}

type DailyEntry struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	UserID             uint         `gorm:"not null;uniqueIndex:uidx_daily_entries_user_date" json:"user_id"`
	EntryDate          time.Time    `gorm:"type:date;not null;uniqueIndex:uidx_daily_entries_user_date" json:"entry_date"`
	MorningCompleted   bool         `gorm:"not null;default:false" json:"morning_completed"`
	MorningIntention   string       `json:"morning_intention"`
	MorningCompletedAt *time.Time   `json:"morning_completed_at"`
	QuickActionID      *uint        `json:"quick_action_id"`
	QuickActionText    string       `json:"quick_action_text"`
	TipTitle           string       `json:"tip_title"`
	ActionCompleted    ActionStatus `gorm:"column:action_completed" json:"action_completed"`
	EveningCompleted   bool         `gorm:"not null;default:false" json:"evening_completed"`
	ReflectionText     string       `json:"reflection_text"`
	Rating             *int         `json:"rating"`
	EveningCompletedAt *time.Time   `json:"evening_completed_at"`
	StarsEarned        int          `gorm:"not null;default:0" json:"stars_earned"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// IsFullDay reports whether both the morning and evening halves were done.
func (entry DailyEntry) IsFullDay() bool {
	return entry.MorningCompleted && entry.EveningCompleted
}
