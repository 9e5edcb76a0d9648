package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

const (
	analyticsTrendDays = 7
	topHabitsLimit     = 5
	monthLabelLayout   = "Jan 2006"
)

type TrendPoint struct {
	Label string `json:"label"`
	Date  string `json:"date,omitempty"`
	Value int    `json:"value"`
}

type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type TopHabit struct {
	HabitID         uint   `json:"habit_id"`
	Name            string `json:"name"`
	Icon            string `json:"icon"`
	CompletionCount int    `json:"completion_count"`
	CompletionRate  int    `json:"completion_rate"`
}

type HabitAnalytics struct {
	TotalHabits           int          `json:"total_habits"`
	TotalHabitCompletions int          `json:"total_habit_completions"`
	HabitCompletionRate   int          `json:"habit_completion_rate"`
	TopHabits             []TopHabit   `json:"top_habits"`
	HabitWeeklyTrend      []TrendPoint `json:"habit_weekly_trend"`
}

type Analytics struct {
	CompletionRate     int            `json:"completion_rate"`
	CurrentStreak      int            `json:"current_streak"`
	LongestStreak      int            `json:"longest_streak"`
	TotalStars         int            `json:"total_stars"`
	AverageRating      float64        `json:"average_rating"`
	TotalBadges        int            `json:"total_badges"`
	WeeklyTrend        []TrendPoint   `json:"weekly_trend"`
	MonthlyTrend       []TrendPoint   `json:"monthly_trend"`
	RatingDistribution []RatingBucket `json:"rating_distribution"`
	BestDay            string         `json:"best_day"`
	TotalDays          int            `json:"total_days"`
	HabitStats         HabitAnalytics `json:"habit_stats"`
}

// BuildAnalytics folds a user's full history into the analytics summary.
// now is interpreted as a calendar day; the caller resolves the user's zone.
func BuildAnalytics(entries []models.DailyEntry, habits []models.Habit, completions []models.HabitCompletion, badgeCount int, now time.Time) Analytics {
	totalDays := len(entries)
	completed := TotalCompletions(entries)

	return Analytics{
		CompletionRate:     roundPercent(completed, totalDays),
		CurrentStreak:      CurrentStreak(entries),
		LongestStreak:      LongestStreak(entries),
		TotalStars:         TotalStars(entries),
		AverageRating:      AverageRating(entries),
		TotalBadges:        badgeCount,
		WeeklyTrend:        weeklyTrend(entries, now),
		MonthlyTrend:       monthlyTrend(entries),
		RatingDistribution: ratingDistribution(entries),
		BestDay:            BestWeekday(entries),
		TotalDays:          totalDays,
		HabitStats:         buildHabitAnalytics(habits, completions, totalDays, now),
	}
}

// weeklyTrend marks each of the last seven calendar days ending today with 1
// for a full day and 0 otherwise, oldest first.
func weeklyTrend(entries []models.DailyEntry, now time.Time) []TrendPoint {
	fullDays := make(map[time.Time]bool, len(entries))
	for _, entry := range entries {
		if entry.IsFullDay() {
			fullDays[civilDay(entry.EntryDate)] = true
		}
	}

	today := civilDay(now)
	points := make([]TrendPoint, 0, analyticsTrendDays)
	for offset := analyticsTrendDays - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		value := 0
		if fullDays[day] {
			value = 1
		}
		points = append(points, TrendPoint{
			Label: day.Weekday().String()[:3],
			Date:  FormatCalendarDate(day),
			Value: value,
		})
	}
	return points
}

// monthlyTrend counts full days per calendar month, skipping months without entries.
func monthlyTrend(entries []models.DailyEntry) []TrendPoint {
	type monthKey struct {
		year  int
		month time.Month
	}

	counts := make(map[monthKey]int)
	keys := make([]monthKey, 0)
	for _, entry := range entries {
		day := civilDay(entry.EntryDate)
		key := monthKey{year: day.Year(), month: day.Month()}
		if _, seen := counts[key]; !seen {
			counts[key] = 0
			keys = append(keys, key)
		}
		if entry.IsFullDay() {
			counts[key]++
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, TrendPoint{
			Label: time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.UTC).Format(monthLabelLayout),
			Value: counts[key],
		})
	}
	return points
}

func ratingDistribution(entries []models.DailyEntry) []RatingBucket {
	buckets := make([]RatingBucket, 5)
	for index := range buckets {
		buckets[index].Rating = index + 1
	}
	for _, entry := range entries {
		if entry.Rating == nil || *entry.Rating < 1 || *entry.Rating > 5 {
			continue
		}
		buckets[*entry.Rating-1].Count++
	}
	return buckets
}

func buildHabitAnalytics(habits []models.Habit, completions []models.HabitCompletion, totalDays int, now time.Time) HabitAnalytics {
	perHabit := make(map[uint]int, len(habits))
	for _, completion := range completions {
		perHabit[completion.HabitID]++
	}

	top := make([]TopHabit, 0, len(habits))
	for _, habit := range habits {
		count := perHabit[habit.ID]
		top = append(top, TopHabit{
			HabitID:         habit.ID,
			Name:            habit.Name,
			Icon:            habit.Icon,
			CompletionCount: count,
			CompletionRate:  roundPercent(count, totalDays),
		})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].CompletionCount > top[j].CompletionCount
	})
	if len(top) > topHabitsLimit {
		top = top[:topHabitsLimit]
	}

	return HabitAnalytics{
		TotalHabits:           len(habits),
		TotalHabitCompletions: len(completions),
		HabitCompletionRate:   roundPercent(len(completions), len(habits)*totalDays),
		TopHabits:             top,
		HabitWeeklyTrend:      habitWeeklyTrend(completions, now),
	}
}

func habitWeeklyTrend(completions []models.HabitCompletion, now time.Time) []TrendPoint {
	perDay := make(map[time.Time]int)
	for _, completion := range completions {
		perDay[civilDay(completion.CompletedDate)]++
	}

	today := civilDay(now)
	points := make([]TrendPoint, 0, analyticsTrendDays)
	for offset := analyticsTrendDays - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		points = append(points, TrendPoint{
			Label: day.Weekday().String()[:3],
			Date:  FormatCalendarDate(day),
			Value: perDay[day],
		})
	}
	return points
}
