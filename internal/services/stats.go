package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

const BestWeekdayUnavailable = "N/A"

// UserStats is the per-user summary derived from the full entry history.
type UserStats struct {
	TotalStars              int     `json:"total_stars"`
	CurrentStreak           int     `json:"current_streak"`
	LongestStreak           int     `json:"longest_streak"`
	TotalCompletions        int     `json:"total_completions"`
	TotalMorningIntentions  int     `json:"total_morning_intentions"`
	TotalEveningReflections int     `json:"total_evening_reflections"`
	AverageRating           float64 `json:"average_rating"`
	BestDay                 string  `json:"best_day"`
}

func BuildUserStats(entries []models.DailyEntry) UserStats {
	return UserStats{
		TotalStars:              TotalStars(entries),
		CurrentStreak:           CurrentStreak(entries),
		LongestStreak:           LongestStreak(entries),
		TotalCompletions:        TotalCompletions(entries),
		TotalMorningIntentions:  TotalMorningIntentions(entries),
		TotalEveningReflections: TotalEveningReflections(entries),
		AverageRating:           AverageRating(entries),
		BestDay:                 BestWeekday(entries),
	}
}

func TotalStars(entries []models.DailyEntry) int {
	total := 0
	for _, entry := range entries {
		total += entry.StarsEarned
	}
	return total
}

func TotalCompletions(entries []models.DailyEntry) int {
	total := 0
	for _, entry := range entries {
		if entry.IsFullDay() {
			total++
		}
	}
	return total
}

func TotalMorningIntentions(entries []models.DailyEntry) int {
	total := 0
	for _, entry := range entries {
		if entry.MorningCompleted {
			total++
		}
	}
	return total
}

func TotalEveningReflections(entries []models.DailyEntry) int {
	total := 0
	for _, entry := range entries {
		if entry.EveningCompleted {
			total++
		}
	}
	return total
}

// CurrentStreak counts consecutive full days walking back from the most
// recent entry. It does not require that entry to be today.
func CurrentStreak(entries []models.DailyEntry) int {
	sorted := sortedEntries(entries, true)

	streak := 0
	var previous time.Time
	for index, entry := range sorted {
		if !entry.IsFullDay() {
			break
		}
		day := civilDay(entry.EntryDate)
		if index > 0 && !day.Equal(previous.AddDate(0, 0, -1)) {
			break
		}
		streak++
		previous = day
	}
	return streak
}

func LongestStreak(entries []models.DailyEntry) int {
	sorted := sortedEntries(entries, false)

	longest := 0
	run := 0
	var previous time.Time
	for _, entry := range sorted {
		if !entry.IsFullDay() {
			run = 0
			continue
		}
		day := civilDay(entry.EntryDate)
		if run > 0 && day.Equal(previous.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		previous = day
		if run > longest {
			longest = run
		}
	}
	return longest
}

// AverageRating is the mean of present ratings rounded to one decimal.
func AverageRating(entries []models.DailyEntry) float64 {
	sum := 0
	count := 0
	for _, entry := range entries {
		if entry.Rating == nil {
			continue
		}
		sum += *entry.Rating
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// BestWeekday names the weekday with the most full days. Ties go to the
// earlier weekday, Sunday first.
func BestWeekday(entries []models.DailyEntry) string {
	var counts [7]int
	for _, entry := range entries {
		if entry.IsFullDay() {
			counts[civilDay(entry.EntryDate).Weekday()]++
		}
	}

	best := -1
	bestCount := 0
	for weekday, count := range counts {
		if count > bestCount {
			best = weekday
			bestCount = count
		}
	}
	if best < 0 {
		return BestWeekdayUnavailable
	}
	return time.Weekday(best).String()
}

// HabitStreak counts consecutive completion days of one habit ending at asOf.
// Completions after asOf are ignored.
func HabitStreak(completions []models.HabitCompletion, habitID uint, asOf time.Time) int {
	days := make(map[time.Time]struct{})
	for _, completion := range completions {
		if completion.HabitID == habitID {
			days[civilDay(completion.CompletedDate)] = struct{}{}
		}
	}

	streak := 0
	for cursor := civilDay(asOf); ; cursor = cursor.AddDate(0, 0, -1) {
		if _, ok := days[cursor]; !ok {
			return streak
		}
		streak++
	}
}

// HabitCompletionRate is the percentage of the last windowDays days on which
// the habit was completed. The denominator is the window length regardless of
// the habit's frequency or age.
func HabitCompletionRate(completions []models.HabitCompletion, habitID uint, windowDays int, now time.Time) int {
	if windowDays <= 0 {
		return 0
	}

	today := civilDay(now)
	start := today.AddDate(0, 0, -windowDays)
	count := 0
	for _, completion := range completions {
		if completion.HabitID != habitID {
			continue
		}
		day := civilDay(completion.CompletedDate)
		if day.After(start) && !day.After(today) {
			count++
		}
	}
	return roundPercent(count, windowDays)
}

func roundPercent(numerator int, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Floor(float64(numerator)*100/float64(denominator) + 0.5))
}

func sortedEntries(entries []models.DailyEntry, newestFirst bool) []models.DailyEntry {
	sorted := make([]models.DailyEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if newestFirst {
			return civilDay(sorted[i].EntryDate).After(civilDay(sorted[j].EntryDate))
		}
		return civilDay(sorted[i].EntryDate).Before(civilDay(sorted[j].EntryDate))
	})
	return sorted
}
