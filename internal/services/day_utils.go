package services

import (
	"strings"
	"time"
	// Profile timezones are resolved by name on hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/terraincognita07/mindful/internal/models"
)

const calendarDateLayout = "2006-01-02"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// CalendarDate returns the civil date of value in location as UTC midnight,
// which is how entry and completion dates are persisted.
func CalendarDate(value time.Time, location *time.Location) time.Time {
	year, month, day := DateAtLocation(value, location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CalendarDayRange returns the half-open storage range covering day.
func CalendarDayRange(day time.Time) (time.Time, time.Time) {
	start := civilDay(day)
	return start, start.AddDate(0, 0, 1)
}

func ParseCalendarDate(raw string) (time.Time, error) {
	return time.Parse(calendarDateLayout, strings.TrimSpace(raw))
}

func FormatCalendarDate(day time.Time) string {
	return civilDay(day).Format(calendarDateLayout)
}

// UserLocation resolves the user's profile timezone, falling back when unset or unknown.
func UserLocation(user *models.User, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if user == nil {
		return fallback
	}
	name := strings.TrimSpace(user.Timezone)
	if name == "" {
		return fallback
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return location
}

// civilDay drops the clock part while keeping the wall-clock date of value.
func civilDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func sameCalendarDay(left time.Time, right time.Time) bool {
	return civilDay(left).Equal(civilDay(right))
}
