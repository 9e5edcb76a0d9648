package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxSettingsDisplayNameLength = 64
	maxProfileGoals              = 10
	maxProfileGoalLength         = 100
	reminderTimeLayout           = "15:04"
)

const DefaultLanguage = "en"

var SupportedLanguages = []string{"en", "ru"}

var (
	ErrSettingsDisplayNameTooLong = errors.New("settings display name too long")
	ErrSettingsInvalidTimezone    = errors.New("settings invalid timezone")
	ErrSettingsInvalidLanguage    = errors.New("settings invalid language")
	ErrSettingsInvalidGoals       = errors.New("settings invalid goals")
	ErrInvalidReminderTime        = errors.New("reminder time must be HH:MM")
)

func NormalizeDisplayName(raw string) (string, error) {
	displayName := strings.TrimSpace(raw)
	if utf8.RuneCountInString(displayName) > maxSettingsDisplayNameLength {
		return "", ErrSettingsDisplayNameTooLong
	}
	return displayName, nil
}

// NormalizeTimezone accepts an IANA zone name. Blank clears the zone so the
// server default applies.
func NormalizeTimezone(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return "", fmt.Errorf("%w: %q", ErrSettingsInvalidTimezone, name)
	}
	return name, nil
}

func NormalizeLanguage(raw string) (string, error) {
	language := strings.ToLower(strings.TrimSpace(raw))
	for _, supported := range SupportedLanguages {
		if language == supported {
			return language, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSettingsInvalidLanguage, raw)
}

// NormalizeProfileGoals trims goals, drops blanks and duplicates, and keeps order.
func NormalizeProfileGoals(raw []string) ([]string, error) {
	goals := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		goal := strings.TrimSpace(value)
		if goal == "" {
			continue
		}
		if utf8.RuneCountInString(goal) > maxProfileGoalLength {
			return nil, ErrSettingsInvalidGoals
		}
		key := strings.ToLower(goal)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		goals = append(goals, goal)
	}
	if len(goals) > maxProfileGoals {
		return nil, ErrSettingsInvalidGoals
	}
	return goals, nil
}

// NormalizeReminderTime parses a 24-hour HH:MM value and returns it zero padded.
func NormalizeReminderTime(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	parsed, err := time.Parse(reminderTimeLayout, value)
	if err != nil {
		if short, shortErr := time.Parse("15:4", value); shortErr == nil {
			return short.Format(reminderTimeLayout), nil
		}
		return "", ErrInvalidReminderTime
	}
	return parsed.Format(reminderTimeLayout), nil
}
