package services

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MaxDayTextLength = 2000

var (
	ErrDayTextRequired = errors.New("text is required")
	ErrDayTextTooLong  = errors.New("text is too long")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// NormalizeDayText trims an intention or reflection and enforces its limits.
func NormalizeDayText(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrDayTextRequired
	}
	if utf8.RuneCountInString(value) > MaxDayTextLength {
		return "", ErrDayTextTooLong
	}
	return value, nil
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
