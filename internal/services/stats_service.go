package services

import (
	"time"

	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

type StatsEntryReader interface {
	ListByUser(userID uint) ([]models.DailyEntry, error)
}

type StatsHabitReader interface {
	ListHabits(userID uint) ([]models.Habit, error)
	ListCompletions(userID uint) ([]models.HabitCompletion, error)
}

type StatsBadgeCounter interface {
	CountByUser(userID uint) (int64, error)
}

// StatsService re-reads a user's history on every call and folds it through
// the pure calculators. Read failures yield zeroed results.
type StatsService struct {
	entries  StatsEntryReader
	habits   StatsHabitReader
	badges   StatsBadgeCounter
	location *time.Location
}

func NewStatsService(entries StatsEntryReader, habits StatsHabitReader, badges StatsBadgeCounter, location *time.Location) *StatsService {
	if location == nil {
		location = time.UTC
	}
	return &StatsService{
		entries:  entries,
		habits:   habits,
		badges:   badges,
		location: location,
	}
}

func (service *StatsService) UserStats(user *models.User) UserStats {
	entries, err := service.entries.ListByUser(user.ID)
	if err != nil {
		logger.Error("load entries for stats failed", "user_id", user.ID, "err", err)
		return BuildUserStats(nil)
	}
	return BuildUserStats(entries)
}

func (service *StatsService) Analytics(user *models.User, now time.Time) Analytics {
	today := CalendarDate(now, UserLocation(user, service.location))

	entries, err := service.entries.ListByUser(user.ID)
	if err != nil {
		logger.Error("load entries for analytics failed", "user_id", user.ID, "err", err)
		return BuildAnalytics(nil, nil, nil, 0, today)
	}

	habits, err := service.habits.ListHabits(user.ID)
	if err != nil {
		logger.Warn("load habits for analytics failed", "user_id", user.ID, "err", err)
		habits = nil
	}
	completions, err := service.habits.ListCompletions(user.ID)
	if err != nil {
		logger.Warn("load habit completions for analytics failed", "user_id", user.ID, "err", err)
		completions = nil
	}
	badgeCount, err := service.badges.CountByUser(user.ID)
	if err != nil {
		logger.Warn("count badges for analytics failed", "user_id", user.ID, "err", err)
		badgeCount = 0
	}

	return BuildAnalytics(entries, habits, completions, int(badgeCount), today)
}
