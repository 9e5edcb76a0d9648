package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
)

type habitRepositoryStub struct {
	goals       map[uint]models.Goal
	habits      map[uint]models.Habit
	completions []models.HabitCompletion
	nextID      uint
	createErr   error
}

func newHabitRepositoryStub() *habitRepositoryStub {
	return &habitRepositoryStub{
		goals:  make(map[uint]models.Goal),
		habits: make(map[uint]models.Habit),
		nextID: 1,
	}
}

var errStubNotFound = errors.New("record not found")

func (stub *habitRepositoryStub) ListGoals(userID uint) ([]models.Goal, error) {
	result := make([]models.Goal, 0)
	for _, goal := range stub.goals {
		if goal.UserID == userID {
			result = append(result, goal)
		}
	}
	return result, nil
}

func (stub *habitRepositoryStub) FindGoalForUser(goalID uint, userID uint) (models.Goal, error) {
	goal, ok := stub.goals[goalID]
	if !ok || goal.UserID != userID {
		return models.Goal{}, errStubNotFound
	}
	return goal, nil
}

func (stub *habitRepositoryStub) CreateGoal(goal *models.Goal) error {
	goal.ID = stub.nextID
	stub.nextID++
	stub.goals[goal.ID] = *goal
	return nil
}

func (stub *habitRepositoryStub) SaveGoal(goal *models.Goal) error {
	stub.goals[goal.ID] = *goal
	return nil
}

func (stub *habitRepositoryStub) DeleteGoal(goalID uint, userID uint) error {
	for id, habit := range stub.habits {
		if habit.GoalID != nil && *habit.GoalID == goalID {
			habit.GoalID = nil
			stub.habits[id] = habit
		}
	}
	delete(stub.goals, goalID)
	return nil
}

func (stub *habitRepositoryStub) ListHabits(userID uint) ([]models.Habit, error) {
	result := make([]models.Habit, 0)
	for _, habit := range stub.habits {
		if habit.UserID == userID {
			result = append(result, habit)
		}
	}
	return result, nil
}

func (stub *habitRepositoryStub) FindHabitForUser(habitID uint, userID uint) (models.Habit, error) {
	habit, ok := stub.habits[habitID]
	if !ok || habit.UserID != userID {
		return models.Habit{}, errStubNotFound
	}
	return habit, nil
}

func (stub *habitRepositoryStub) CreateHabit(habit *models.Habit) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	habit.ID = stub.nextID
	stub.nextID++
	stub.habits[habit.ID] = *habit
	return nil
}

func (stub *habitRepositoryStub) SaveHabit(habit *models.Habit) error {
	stub.habits[habit.ID] = *habit
	return nil
}

func (stub *habitRepositoryStub) DeleteHabit(habitID uint, userID uint) error {
	kept := stub.completions[:0]
	for _, completion := range stub.completions {
		if completion.HabitID != habitID {
			kept = append(kept, completion)
		}
	}
	stub.completions = kept
	delete(stub.habits, habitID)
	return nil
}

func (stub *habitRepositoryStub) ListCompletions(userID uint) ([]models.HabitCompletion, error) {
	result := make([]models.HabitCompletion, 0, len(stub.completions))
	for _, completion := range stub.completions {
		if completion.UserID == userID {
			result = append(result, completion)
		}
	}
	return result, nil
}

func (stub *habitRepositoryStub) InsertCompletion(completion *models.HabitCompletion) (bool, error) {
	for _, existing := range stub.completions {
		if existing.UserID == completion.UserID && existing.HabitID == completion.HabitID && existing.CompletedDate.Equal(completion.CompletedDate) {
			return false, nil
		}
	}
	completion.ID = stub.nextID
	stub.nextID++
	stub.completions = append(stub.completions, *completion)
	return true, nil
}

func (stub *habitRepositoryStub) DeleteCompletion(userID uint, habitID uint, dayStart time.Time, dayEnd time.Time) error {
	kept := stub.completions[:0]
	for _, completion := range stub.completions {
		inDay := !completion.CompletedDate.Before(dayStart) && completion.CompletedDate.Before(dayEnd)
		if completion.UserID == userID && completion.HabitID == habitID && inDay {
			continue
		}
		kept = append(kept, completion)
	}
	stub.completions = kept
	return nil
}

func newHabitServiceFixture(now time.Time) (*HabitService, *habitRepositoryStub, *dayBadgeEvaluatorStub) {
	repo := newHabitRepositoryStub()
	badges := &dayBadgeEvaluatorStub{badges: []models.Badge{}}
	service := NewHabitService(repo, badges, time.UTC)
	service.now = func() time.Time { return now }
	return service, repo, badges
}

func TestHabitServiceRequiresPremium(t *testing.T) {
	service, _, _ := newHabitServiceFixture(time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC))
	free := &models.User{ID: 1, SubscriptionTier: models.TierFree}

	if _, _, err := service.CreateHabit(free, HabitInput{Name: "Save"}); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected ErrPremiumRequired, got %v", err)
	}
	if _, err := service.ListGoals(free); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected ErrPremiumRequired, got %v", err)
	}
}

func TestHabitServiceCreateHabitDefaults(t *testing.T) {
	service, _, _ := newHabitServiceFixture(time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC))
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}

	habit, _, err := service.CreateHabit(user, HabitInput{Name: "  No takeout  "})
	if err != nil {
		t.Fatalf("CreateHabit() unexpected error: %v", err)
	}
	if habit.Name != "No takeout" || habit.Icon != models.DefaultHabitIcon || habit.Frequency != models.HabitFrequencyDaily || habit.TargetCount != 1 {
		t.Fatalf("unexpected defaults: %#v", habit)
	}
}

func TestHabitServiceCreateHabitRunsBadgePass(t *testing.T) {
	service, _, badges := newHabitServiceFixture(time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC))
	badges.badges = []models.Badge{{Name: "Multi-Tracker"}}
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}

	_, newBadges, err := service.CreateHabit(user, HabitInput{Name: "Track lunch"})
	if err != nil {
		t.Fatalf("CreateHabit() unexpected error: %v", err)
	}
	if badges.calls != 1 {
		t.Fatalf("expected one badge pass after create, got %d", badges.calls)
	}
	if len(newBadges) != 1 || newBadges[0].Name != "Multi-Tracker" {
		t.Fatalf("expected awarded badge returned, got %#v", newBadges)
	}

	if _, _, err := service.CreateHabit(user, HabitInput{Name: " "}); err == nil {
		t.Fatal("expected invalid habit to fail")
	}
	if badges.calls != 1 {
		t.Fatalf("expected no badge pass for a rejected create, got %d", badges.calls)
	}
}

func TestHabitServiceValidation(t *testing.T) {
	service, _, _ := newHabitServiceFixture(time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC))
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}
	missingGoal := uint(42)

	tests := []struct {
		name    string
		input   HabitInput
		wantErr error
	}{
		{name: "blank name", input: HabitInput{Name: " "}, wantErr: ErrInvalidHabitName},
		{name: "bad frequency", input: HabitInput{Name: "x", Frequency: "hourly"}, wantErr: ErrInvalidHabitFrequency},
		{name: "negative target", input: HabitInput{Name: "x", TargetCount: -1}, wantErr: ErrInvalidHabitTargetCount},
		{name: "unknown goal", input: HabitInput{Name: "x", GoalID: &missingGoal}, wantErr: ErrGoalNotFound},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if _, _, err := service.CreateHabit(user, testCase.input); !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}

	if _, err := service.CreateGoal(user, GoalInput{Title: "Emergency fund", Status: "paused"}); !errors.Is(err, ErrInvalidGoalStatus) {
		t.Fatalf("expected ErrInvalidGoalStatus, got %v", err)
	}
}

func TestHabitServiceCompleteIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.July, 3, 9, 0, 0, 0, time.UTC)
	service, repo, badges := newHabitServiceFixture(now)
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}
	habit, _, err := service.CreateHabit(user, HabitInput{Name: "Check balance"})
	if err != nil {
		t.Fatalf("CreateHabit() unexpected error: %v", err)
	}

	first, err := service.CompleteHabit(user, habit.ID, now, "done")
	if err != nil || !first.Inserted {
		t.Fatalf("expected first completion inserted, got %#v (%v)", first, err)
	}
	second, err := service.CompleteHabit(user, habit.ID, now, "again")
	if err != nil || second.Inserted {
		t.Fatalf("expected duplicate completion to be a no-op, got %#v (%v)", second, err)
	}
	if len(repo.completions) != 1 {
		t.Fatalf("expected one completion row, got %d", len(repo.completions))
	}
	if badges.calls != 2 {
		t.Fatalf("expected badge passes for the create and the inserted completion only, got %d", badges.calls)
	}

	if err := service.UncompleteHabit(user, habit.ID, now); err != nil {
		t.Fatalf("UncompleteHabit() unexpected error: %v", err)
	}
	if len(repo.completions) != 0 {
		t.Fatalf("expected completion removed, got %d", len(repo.completions))
	}
}

func TestHabitServiceStats(t *testing.T) {
	now := time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newHabitServiceFixture(now)
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}
	habit, _, err := service.CreateHabit(user, HabitInput{Name: "Log spending"})
	if err != nil {
		t.Fatalf("CreateHabit() unexpected error: %v", err)
	}
	for _, day := range []int{10, 9, 8, 5} {
		if _, err := service.CompleteHabit(user, habit.ID, time.Date(2026, time.July, day, 0, 0, 0, 0, time.UTC), ""); err != nil {
			t.Fatalf("CompleteHabit() unexpected error: %v", err)
		}
	}

	stats, err := service.HabitStats(user, habit.ID)
	if err != nil {
		t.Fatalf("HabitStats() unexpected error: %v", err)
	}
	if stats.CurrentStreak != 3 || stats.TotalCompletions != 4 || !stats.CompletedToday {
		t.Fatalf("unexpected stats: %#v", stats)
	}
	if stats.CompletionRate7 != 57 || stats.CompletionRate30 != 13 {
		t.Fatalf("unexpected rates: 7d=%d 30d=%d", stats.CompletionRate7, stats.CompletionRate30)
	}
}

func TestHabitServiceDeleteGoalDetachesHabits(t *testing.T) {
	service, repo, _ := newHabitServiceFixture(time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC))
	user := &models.User{ID: 1, SubscriptionTier: models.TierPremium}
	goal, err := service.CreateGoal(user, GoalInput{Title: "Debt free"})
	if err != nil {
		t.Fatalf("CreateGoal() unexpected error: %v", err)
	}
	if goal.Status != models.GoalStatusActive {
		t.Fatalf("expected default active status, got %q", goal.Status)
	}
	habit, _, err := service.CreateHabit(user, HabitInput{Name: "Extra payment", GoalID: &goal.ID})
	if err != nil {
		t.Fatalf("CreateHabit() unexpected error: %v", err)
	}

	if err := service.DeleteGoal(user, goal.ID); err != nil {
		t.Fatalf("DeleteGoal() unexpected error: %v", err)
	}
	if repo.habits[habit.ID].GoalID != nil {
		t.Fatalf("expected habit detached from deleted goal")
	}
	if err := service.DeleteGoal(user, goal.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound on second delete, got %v", err)
	}
}
