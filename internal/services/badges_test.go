package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

type stubBadgeRepo struct {
	catalog   []models.Badge
	earned    map[uint]models.UserBadge
	insertErr error
	listErr   error
	inserts   int
}

func newStubBadgeRepo() *stubBadgeRepo {
	catalog := models.DefaultBadgeCatalog()
	for index := range catalog {
		catalog[index].ID = uint(index + 1)
	}
	return &stubBadgeRepo{catalog: catalog, earned: map[uint]models.UserBadge{}}
}

func (stub *stubBadgeRepo) ListCatalog() ([]models.Badge, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	result := make([]models.Badge, len(stub.catalog))
	copy(result, stub.catalog)
	return result, nil
}

func (stub *stubBadgeRepo) ListEarnedBadgeIDs(uint) ([]uint, error) {
	ids := make([]uint, 0, len(stub.earned))
	for id := range stub.earned {
		ids = append(ids, id)
	}
	return ids, nil
}

func (stub *stubBadgeRepo) InsertIfAbsent(award *models.UserBadge) (bool, error) {
	if stub.insertErr != nil {
		return false, stub.insertErr
	}
	stub.inserts++
	if _, ok := stub.earned[award.BadgeID]; ok {
		return false, nil
	}
	stub.earned[award.BadgeID] = *award
	return true, nil
}

func (stub *stubBadgeRepo) ListUserBadges(uint) ([]models.UserBadge, error) {
	result := make([]models.UserBadge, 0, len(stub.earned))
	for _, award := range stub.earned {
		result = append(result, award)
	}
	return result, nil
}

func (stub *stubBadgeRepo) earnedNames() map[string]bool {
	names := map[string]bool{}
	for _, badge := range stub.catalog {
		if _, ok := stub.earned[badge.ID]; ok {
			names[badge.Name] = true
		}
	}
	return names
}

type stubBadgeEntries struct {
	entries []models.DailyEntry
	err     error
}

func (stub *stubBadgeEntries) ListByUser(uint) ([]models.DailyEntry, error) {
	return stub.entries, stub.err
}

type stubBadgeHabits struct {
	habits      []models.Habit
	completions []models.HabitCompletion
	listCalls   int
}

func (stub *stubBadgeHabits) ListHabits(uint) ([]models.Habit, error) {
	stub.listCalls++
	return stub.habits, nil
}

func (stub *stubBadgeHabits) ListCompletions(uint) ([]models.HabitCompletion, error) {
	return stub.completions, nil
}

type stubBadgeCounter struct {
	count int64
	err   error
	calls int
}

func (stub *stubBadgeCounter) CountByUser(uint) (int64, error) {
	stub.calls++
	return stub.count, stub.err
}

func (stub *stubBadgeCounter) CountPreferences(uint) (int64, error) {
	stub.calls++
	return stub.count, stub.err
}

type stubBadgeUsers struct {
	user models.User
	err  error
}

func (stub *stubBadgeUsers) FindByID(uint) (models.User, error) {
	return stub.user, stub.err
}

type badgeFixture struct {
	badges      *stubBadgeRepo
	entries     *stubBadgeEntries
	habits      *stubBadgeHabits
	exports     *stubBadgeCounter
	preferences *stubBadgeCounter
	users       *stubBadgeUsers
	service     *BadgeService
}

func newBadgeFixture(user models.User, entries []models.DailyEntry) *badgeFixture {
	fixture := &badgeFixture{
		badges:      newStubBadgeRepo(),
		entries:     &stubBadgeEntries{entries: entries},
		habits:      &stubBadgeHabits{},
		exports:     &stubBadgeCounter{},
		preferences: &stubBadgeCounter{},
		users:       &stubBadgeUsers{user: user},
	}
	fixture.service = NewBadgeService(
		fixture.badges,
		fixture.entries,
		fixture.habits,
		fixture.exports,
		fixture.preferences,
		fixture.users,
		time.UTC,
	)
	return fixture
}

func premiumUser() models.User {
	return models.User{ID: 1, SubscriptionTier: models.TierPremium}
}

func badgeNames(badges []models.Badge) map[string]bool {
	names := make(map[string]bool, len(badges))
	for _, badge := range badges {
		names[badge.Name] = true
	}
	return names
}

func TestEvaluateAwardsFirstStepsAfterFirstIntention(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	entries := []models.DailyEntry{
		{EntryDate: statsDay(time.March, 3), MorningCompleted: true, StarsEarned: 2},
	}
	fixture := newBadgeFixture(models.User{ID: 1, SubscriptionTier: models.TierFree}, entries)

	awarded := fixture.service.Evaluate(1, now)
	names := badgeNames(awarded)
	if len(awarded) != 1 || !names["First Steps"] {
		t.Fatalf("expected only First Steps, got %#v", names)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.March, 5, 21, 0, 0, 0, time.UTC)
	entries := []models.DailyEntry{
		fullDayEntry(statsDay(time.March, 3), 4),
		fullDayEntry(statsDay(time.March, 4), 4),
		fullDayEntry(statsDay(time.March, 5), 4),
	}
	fixture := newBadgeFixture(models.User{ID: 1}, entries)

	first := fixture.service.Evaluate(1, now)
	names := badgeNames(first)
	for _, want := range []string{"First Steps", "Getting Started", "Three Day Streak"} {
		if !names[want] {
			t.Fatalf("expected %q in first pass, got %#v", want, names)
		}
	}
	if names["Week Warrior"] {
		t.Fatalf("did not expect Week Warrior with a 3 day streak")
	}

	second := fixture.service.Evaluate(1, now)
	if len(second) != 0 {
		t.Fatalf("expected no new badges on second pass, got %d", len(second))
	}
}

func TestEvaluateSkipsPremiumBadgesForFreeUsers(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]models.DailyEntry, 0, 100)
	start := time.Date(2025, time.November, 22, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 100; offset++ {
		entries = append(entries, fullDayEntry(start.AddDate(0, 0, offset), 4))
	}
	fixture := newBadgeFixture(models.User{ID: 1, SubscriptionTier: models.TierFree}, entries)

	awarded := fixture.service.Evaluate(1, now)
	for _, badge := range awarded {
		if badge.IsPremium() {
			t.Fatalf("free user received premium badge %q", badge.Name)
		}
	}
	names := badgeNames(awarded)
	if !names["Week Warrior"] || !names["Dedicated"] || !names["Star Collector"] {
		t.Fatalf("expected free streak, completion and star badges, got %#v", names)
	}

	fixture.users.user = premiumUser()
	upgraded := badgeNames(fixture.service.Evaluate(1, now))
	for _, want := range []string{"Month Master", "Century Club", "Superstar", "Premium Pioneer"} {
		if !upgraded[want] {
			t.Fatalf("expected %q after upgrade, got %#v", want, upgraded)
		}
	}
}

func TestEvaluateAuxiliaryCountsAreLoadedOnce(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixture := newBadgeFixture(premiumUser(), nil)
	fixture.exports.count = 5
	fixture.preferences.count = 1

	names := badgeNames(fixture.service.Evaluate(1, now))
	if !names["Data Explorer"] || !names["Data Analyst"] {
		t.Fatalf("expected both export badges, got %#v", names)
	}
	if !names["Reminder Rookie"] || names["Notification Ninja"] {
		t.Fatalf("expected only the first reminder badge, got %#v", names)
	}
	if fixture.exports.calls != 1 || fixture.preferences.calls != 1 {
		t.Fatalf("expected one count query each, got exports=%d preferences=%d", fixture.exports.calls, fixture.preferences.calls)
	}
	if fixture.habits.listCalls != 1 {
		t.Fatalf("expected habits listed once, got %d", fixture.habits.listCalls)
	}
}

func TestEvaluateHabitBadges(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	fixture := newBadgeFixture(premiumUser(), nil)
	fixture.habits.habits = []models.Habit{{ID: 1}, {ID: 2}, {ID: 3}}
	for offset := 0; offset < 7; offset++ {
		fixture.habits.completions = append(fixture.habits.completions, models.HabitCompletion{
			HabitID:       2,
			CompletedDate: statsDay(time.March, 10-offset),
		})
	}

	names := badgeNames(fixture.service.Evaluate(1, now))
	if !names["Multi-Tracker"] || !names["Habit Hero"] {
		t.Fatalf("expected habit badges, got %#v", names)
	}
}

func TestEvaluateHabitStreakAnchoredAtToday(t *testing.T) {
	now := time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC)
	fixture := newBadgeFixture(premiumUser(), nil)
	fixture.habits.habits = []models.Habit{{ID: 1}}
	for offset := 0; offset < 7; offset++ {
		fixture.habits.completions = append(fixture.habits.completions, models.HabitCompletion{
			HabitID:       1,
			CompletedDate: statsDay(time.March, 10-offset),
		})
	}

	if names := badgeNames(fixture.service.Evaluate(1, now)); names["Habit Hero"] {
		t.Fatalf("did not expect Habit Hero for a streak that ended ten days ago")
	}
}

func TestEvaluateContinuesAfterAwardFailure(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	entries := []models.DailyEntry{fullDayEntry(statsDay(time.March, 3), 4)}
	fixture := newBadgeFixture(models.User{ID: 1}, entries)
	fixture.badges.insertErr = errors.New("disk full")

	awarded := fixture.service.Evaluate(1, now)
	if len(awarded) != 0 {
		t.Fatalf("expected no awards when inserts fail, got %d", len(awarded))
	}
	if fixture.badges.inserts != 0 {
		t.Fatalf("expected failing inserts not to be recorded")
	}
}

func TestEvaluateReturnsEmptyOnReadFailure(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	fixture := newBadgeFixture(models.User{ID: 1}, nil)
	fixture.entries.err = errors.New("database is locked")

	awarded := fixture.service.Evaluate(1, now)
	if awarded == nil || len(awarded) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", awarded)
	}
}

func TestMatchBadgeRuleOrder(t *testing.T) {
	tests := []struct {
		name  string
		badge models.Badge
		want  string
	}{
		{name: "first steps by name", badge: models.Badge{Name: "First Steps", RequirementType: models.RequirementMilestone}, want: "first_steps"},
		{name: "data category", badge: models.Badge{Name: "Data Analyst", Category: models.BadgeCategoryData, RequirementType: models.RequirementMilestone}, want: "data_exports"},
		{name: "habit streak before generic streak", badge: models.Badge{Name: "Habit Hero", Category: models.BadgeCategoryHabits, RequirementType: models.RequirementStreak}, want: "habit_streak"},
		{name: "other habit badges stay closed", badge: models.Badge{Name: "Habit Builder", Category: models.BadgeCategoryHabits, RequirementType: models.RequirementCompletion}, want: "habits"},
		{name: "generic streak", badge: models.Badge{Name: "Week Warrior", RequirementType: models.RequirementStreak}, want: "streak"},
		{name: "stars milestone", badge: models.Badge{Name: "Star Collector", RequirementType: models.RequirementMilestone}, want: "milestone"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			rule, ok := matchBadgeRule(testCase.badge)
			if !ok || rule.name != testCase.want {
				t.Fatalf("expected rule %q, got %q (ok=%v)", testCase.want, rule.name, ok)
			}
		})
	}

	facts := &badgeFacts{stats: UserStats{TotalCompletions: 50}}
	if facts.eligible(models.Badge{Category: models.BadgeCategoryHabits, RequirementType: models.RequirementCompletion, RequirementValue: 1}) {
		t.Fatalf("expected habit badge without a habit metric to stay unearned")
	}

	if _, ok := matchBadgeRule(models.Badge{Name: "Mystery", RequirementType: "unknown"}); ok {
		t.Fatalf("expected unknown requirement type to match no rule")
	}
}

func TestOverviewReportsProgress(t *testing.T) {
	now := time.Date(2026, time.March, 5, 21, 0, 0, 0, time.UTC)
	entries := []models.DailyEntry{
		fullDayEntry(statsDay(time.March, 4), 4),
		fullDayEntry(statsDay(time.March, 5), 4),
	}
	fixture := newBadgeFixture(models.User{ID: 1}, entries)
	fixture.service.Evaluate(1, now)

	overview, err := fixture.service.Overview(1, now)
	if err != nil {
		t.Fatalf("Overview() unexpected error: %v", err)
	}
	if overview.TotalCount != len(models.DefaultBadgeCatalog()) {
		t.Fatalf("expected full catalog, got %d", overview.TotalCount)
	}
	if overview.EarnedCount != 2 {
		t.Fatalf("expected 2 earned badges, got %d", overview.EarnedCount)
	}

	byName := map[string]BadgeProgress{}
	for _, progress := range overview.Badges {
		byName[progress.Badge.Name] = progress
	}
	streak := byName["Three Day Streak"]
	if streak.Earned || streak.Current != 2 || streak.Target != 3 || streak.Percent != 67 {
		t.Fatalf("unexpected streak progress: %#v", streak)
	}
	if streak.Label != "2/3 days" {
		t.Fatalf("unexpected label %q", streak.Label)
	}
	if !byName["Month Master"].Locked {
		t.Fatalf("expected premium badge locked for free user")
	}
	if first := byName["First Steps"]; !first.Earned || first.EarnedAt == nil || first.Percent != 100 {
		t.Fatalf("expected First Steps earned, got %#v", first)
	}
}
