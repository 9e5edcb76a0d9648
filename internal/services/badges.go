package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	badgeNameFirstSteps     = "First Steps"
	badgeNameGettingStarted = "Getting Started"
	badgeNamePremiumPioneer = "Premium Pioneer"
	badgeNameMultiTracker   = "Multi-Tracker"
)

type BadgeRepository interface {
	ListCatalog() ([]models.Badge, error)
	ListEarnedBadgeIDs(userID uint) ([]uint, error)
	InsertIfAbsent(award *models.UserBadge) (bool, error)
	ListUserBadges(userID uint) ([]models.UserBadge, error)
}

type BadgeEntryReader interface {
	ListByUser(userID uint) ([]models.DailyEntry, error)
}

type BadgeHabitReader interface {
	ListHabits(userID uint) ([]models.Habit, error)
	ListCompletions(userID uint) ([]models.HabitCompletion, error)
}

type BadgeExportCounter interface {
	CountByUser(userID uint) (int64, error)
}

type BadgePreferenceCounter interface {
	CountPreferences(userID uint) (int64, error)
}

type BadgeProfileReader interface {
	FindByID(userID uint) (models.User, error)
}

type BadgeService struct {
	badges      BadgeRepository
	entries     BadgeEntryReader
	habits      BadgeHabitReader
	exports     BadgeExportCounter
	preferences BadgePreferenceCounter
	users       BadgeProfileReader
	location    *time.Location
}

func NewBadgeService(
	badges BadgeRepository,
	entries BadgeEntryReader,
	habits BadgeHabitReader,
	exports BadgeExportCounter,
	preferences BadgePreferenceCounter,
	users BadgeProfileReader,
	location *time.Location,
) *BadgeService {
	if location == nil {
		location = time.UTC
	}
	return &BadgeService{
		badges:      badges,
		entries:     entries,
		habits:      habits,
		exports:     exports,
		preferences: preferences,
		users:       users,
		location:    location,
	}
}

// badgeRule pairs a catalog predicate with the metric the badge is judged on.
// The first rule whose predicate matches decides eligibility. A closed rule
// claims its badges without ever awarding them.
type badgeRule struct {
	name    string
	unit    string
	closed  bool
	matches func(badge models.Badge) bool
	current func(facts *badgeFacts) int
	target  func(badge models.Badge) int
}

func requirementValue(badge models.Badge) int {
	return badge.RequirementValue
}

func singleStep(models.Badge) int {
	return 1
}

var badgeRules = []badgeRule{
	{
		name:    "first_steps",
		unit:    "morning intentions",
		matches: func(badge models.Badge) bool { return badge.Name == badgeNameFirstSteps },
		current: func(facts *badgeFacts) int { return facts.stats.TotalMorningIntentions },
		target:  singleStep,
	},
	{
		name:    "getting_started",
		unit:    "full days",
		matches: func(badge models.Badge) bool { return badge.Name == badgeNameGettingStarted },
		current: func(facts *badgeFacts) int { return facts.stats.TotalCompletions },
		target:  singleStep,
	},
	{
		name:    "premium_pioneer",
		unit:    "premium",
		matches: func(badge models.Badge) bool { return badge.Name == badgeNamePremiumPioneer },
		current: func(facts *badgeFacts) int {
			if facts.isPremium {
				return 1
			}
			return 0
		},
		target: singleStep,
	},
	{
		name:    "data_exports",
		unit:    "exports",
		matches: func(badge models.Badge) bool { return badge.Category == models.BadgeCategoryData },
		current: func(facts *badgeFacts) int { return facts.exportCount() },
		target:  requirementValue,
	},
	{
		name:    "custom_reminders",
		unit:    "reminders",
		matches: func(badge models.Badge) bool { return badge.Category == models.BadgeCategoryCustomization },
		current: func(facts *badgeFacts) int { return facts.preferenceCount() },
		target:  requirementValue,
	},
	{
		name: "habit_count",
		unit: "habits",
		matches: func(badge models.Badge) bool {
			return badge.Category == models.BadgeCategoryHabits && badge.Name == badgeNameMultiTracker
		},
		current: func(facts *badgeFacts) int { return facts.habitCount() },
		target:  requirementValue,
	},
	{
		name: "habit_streak",
		unit: "days",
		matches: func(badge models.Badge) bool {
			return badge.Category == models.BadgeCategoryHabits && badge.RequirementType == models.RequirementStreak
		},
		current: func(facts *badgeFacts) int { return facts.maxHabitStreak() },
		target:  requirementValue,
	},
	{
		// Remaining habit badges have no habit metric to judge them on.
		name:    "habits",
		closed:  true,
		matches: func(badge models.Badge) bool { return badge.Category == models.BadgeCategoryHabits },
	},
	{
		name:    "streak",
		unit:    "days",
		matches: func(badge models.Badge) bool { return badge.RequirementType == models.RequirementStreak },
		current: func(facts *badgeFacts) int { return facts.stats.CurrentStreak },
		target:  requirementValue,
	},
	{
		name:    "completion",
		unit:    "full days",
		matches: func(badge models.Badge) bool { return badge.RequirementType == models.RequirementCompletion },
		current: func(facts *badgeFacts) int { return facts.stats.TotalCompletions },
		target:  requirementValue,
	},
	{
		name:    "milestone",
		unit:    "stars",
		matches: func(badge models.Badge) bool { return badge.RequirementType == models.RequirementMilestone },
		current: func(facts *badgeFacts) int { return facts.stats.TotalStars },
		target:  requirementValue,
	},
}

// matchBadgeRule returns the first rule for badge, or false when no rule
// applies and the badge can never be awarded.
func matchBadgeRule(badge models.Badge) (badgeRule, bool) {
	for _, rule := range badgeRules {
		if rule.matches(badge) {
			return rule, true
		}
	}
	return badgeRule{}, false
}

// badgeFacts holds one pass's inputs. Auxiliary counts are loaded on first
// use and at most once; a failed load counts as zero.
type badgeFacts struct {
	service   *BadgeService
	userID    uint
	today     time.Time
	isPremium bool
	stats     UserStats

	exports         *int
	preferences     *int
	habitsLoaded    bool
	habitTotal      int
	habitStreakBest int
}

func (facts *badgeFacts) exportCount() int {
	if facts.exports == nil {
		count, err := facts.service.exports.CountByUser(facts.userID)
		if err != nil {
			logger.Warn("badge pass: count exports failed", "user_id", facts.userID, "err", err)
			count = 0
		}
		value := int(count)
		facts.exports = &value
	}
	return *facts.exports
}

func (facts *badgeFacts) preferenceCount() int {
	if facts.preferences == nil {
		count, err := facts.service.preferences.CountPreferences(facts.userID)
		if err != nil {
			logger.Warn("badge pass: count reminders failed", "user_id", facts.userID, "err", err)
			count = 0
		}
		value := int(count)
		facts.preferences = &value
	}
	return *facts.preferences
}

func (facts *badgeFacts) habitCount() int {
	facts.loadHabits()
	return facts.habitTotal
}

func (facts *badgeFacts) maxHabitStreak() int {
	facts.loadHabits()
	return facts.habitStreakBest
}

func (facts *badgeFacts) loadHabits() {
	if facts.habitsLoaded {
		return
	}
	facts.habitsLoaded = true

	habits, err := facts.service.habits.ListHabits(facts.userID)
	if err != nil {
		logger.Warn("badge pass: list habits failed", "user_id", facts.userID, "err", err)
		return
	}
	facts.habitTotal = len(habits)
	if len(habits) == 0 {
		return
	}

	completions, err := facts.service.habits.ListCompletions(facts.userID)
	if err != nil {
		logger.Warn("badge pass: list habit completions failed", "user_id", facts.userID, "err", err)
		return
	}
	for _, habit := range habits {
		if streak := HabitStreak(completions, habit.ID, facts.today); streak > facts.habitStreakBest {
			facts.habitStreakBest = streak
		}
	}
}

func (facts *badgeFacts) eligible(badge models.Badge) bool {
	rule, ok := matchBadgeRule(badge)
	if !ok || rule.closed {
		return false
	}
	return rule.current(facts) >= rule.target(badge)
}

func (service *BadgeService) loadFacts(userID uint, now time.Time) (*badgeFacts, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	entries, err := service.entries.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	return &badgeFacts{
		service:   service,
		userID:    userID,
		today:     CalendarDate(now, UserLocation(&user, service.location)),
		isPremium: IsPremium(user.Profile(), now),
		stats:     BuildUserStats(entries),
	}, nil
}

// Evaluate runs one award pass and returns the badges newly awarded by it.
// Failures are logged and never surface to the caller; a failed pass
// returns an empty list.
func (service *BadgeService) Evaluate(userID uint, now time.Time) []models.Badge {
	awarded := make([]models.Badge, 0)

	facts, err := service.loadFacts(userID, now)
	if err != nil {
		logger.Error("badge pass aborted", "user_id", userID, "err", err)
		return awarded
	}
	catalog, err := service.badges.ListCatalog()
	if err != nil {
		logger.Error("badge pass aborted: list catalog", "user_id", userID, "err", err)
		return awarded
	}
	earnedIDs, err := service.badges.ListEarnedBadgeIDs(userID)
	if err != nil {
		logger.Error("badge pass aborted: list earned badges", "user_id", userID, "err", err)
		return awarded
	}

	earned := make(map[uint]struct{}, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = struct{}{}
	}

	for _, badge := range catalog {
		if _, ok := earned[badge.ID]; ok {
			continue
		}
		if badge.IsPremium() && !facts.isPremium {
			continue
		}
		if !facts.eligible(badge) {
			continue
		}

		inserted, err := service.badges.InsertIfAbsent(&models.UserBadge{
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: now.UTC(),
		})
		if err != nil {
			logger.Warn("badge award failed", "user_id", userID, "badge", badge.Name, "err", err)
			continue
		}
		earned[badge.ID] = struct{}{}
		if !inserted {
			// A concurrent pass awarded it first.
			continue
		}
		awarded = append(awarded, badge)
	}

	if len(awarded) > 0 {
		logger.Info("badges awarded", "user_id", userID, "count", len(awarded))
	}
	return awarded
}

type BadgeProgress struct {
	Badge    models.Badge `json:"badge"`
	Earned   bool         `json:"earned"`
	EarnedAt *time.Time   `json:"earned_at,omitempty"`
	Locked   bool         `json:"locked"`
	Current  int          `json:"current"`
	Target   int          `json:"target"`
	Percent  int          `json:"percent"`
	Label    string       `json:"label"`
}

type BadgeOverview struct {
	EarnedCount int             `json:"earned_count"`
	TotalCount  int             `json:"total_count"`
	Badges      []BadgeProgress `json:"badges"`
}

// Overview lists the catalog with the user's progress toward each badge,
// judged with the same metrics as the award pass.
func (service *BadgeService) Overview(userID uint, now time.Time) (BadgeOverview, error) {
	facts, err := service.loadFacts(userID, now)
	if err != nil {
		return BadgeOverview{}, err
	}
	catalog, err := service.badges.ListCatalog()
	if err != nil {
		return BadgeOverview{}, fmt.Errorf("list catalog: %w", err)
	}
	awards, err := service.badges.ListUserBadges(userID)
	if err != nil {
		return BadgeOverview{}, fmt.Errorf("list user badges: %w", err)
	}

	earnedAt := make(map[uint]time.Time, len(awards))
	for _, award := range awards {
		earnedAt[award.BadgeID] = award.EarnedAt
	}

	overview := BadgeOverview{
		TotalCount: len(catalog),
		Badges:     make([]BadgeProgress, 0, len(catalog)),
	}
	for _, badge := range catalog {
		progress := buildBadgeProgress(facts, badge)
		if when, ok := earnedAt[badge.ID]; ok {
			earned := when
			progress.Earned = true
			progress.EarnedAt = &earned
			progress.Percent = 100
			overview.EarnedCount++
		} else {
			progress.Locked = badge.IsPremium() && !facts.isPremium
		}
		overview.Badges = append(overview.Badges, progress)
	}
	return overview, nil
}

func buildBadgeProgress(facts *badgeFacts, badge models.Badge) BadgeProgress {
	progress := BadgeProgress{Badge: badge}
	rule, ok := matchBadgeRule(badge)
	if !ok || rule.closed {
		return progress
	}

	current := rule.current(facts)
	target := rule.target(badge)
	shown := current
	if target > 0 && shown > target {
		shown = target
	}

	progress.Current = current
	progress.Target = target
	progress.Label = fmt.Sprintf("%d/%d %s", shown, target, rule.unit)
	if target <= 0 {
		progress.Percent = 100
	} else {
		progress.Percent = min(100, roundPercent(current, target))
	}
	return progress
}
