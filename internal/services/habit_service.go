package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/mindful/internal/models"
)

const (
	maxGoalTitleLength   = 200
	maxHabitNameLength   = 100
	maxHabitNoteLength   = 500
	maxHabitTargetCount  = 100
	habitShortRateWindow = 7
	habitLongRateWindow  = 30
)

var (
	ErrInvalidGoalTitle        = errors.New("invalid goal title")
	ErrInvalidGoalStatus       = errors.New("invalid goal status")
	ErrGoalNotFound            = errors.New("goal not found")
	ErrCreateGoalFailed        = errors.New("create goal failed")
	ErrUpdateGoalFailed        = errors.New("update goal failed")
	ErrDeleteGoalFailed        = errors.New("delete goal failed")
	ErrInvalidHabitName        = errors.New("invalid habit name")
	ErrInvalidHabitFrequency   = errors.New("invalid habit frequency")
	ErrInvalidHabitTargetCount = errors.New("invalid habit target count")
	ErrInvalidHabitNote        = errors.New("habit note is too long")
	ErrHabitNotFound           = errors.New("habit not found")
	ErrCreateHabitFailed       = errors.New("create habit failed")
	ErrUpdateHabitFailed       = errors.New("update habit failed")
	ErrDeleteHabitFailed       = errors.New("delete habit failed")
	ErrHabitCompletionFailed   = errors.New("habit completion failed")
	ErrHabitsLoadFailed        = errors.New("load habits failed")
)

type HabitRepository interface {
	ListGoals(userID uint) ([]models.Goal, error)
	FindGoalForUser(goalID uint, userID uint) (models.Goal, error)
	CreateGoal(goal *models.Goal) error
	SaveGoal(goal *models.Goal) error
	DeleteGoal(goalID uint, userID uint) error
	ListHabits(userID uint) ([]models.Habit, error)
	FindHabitForUser(habitID uint, userID uint) (models.Habit, error)
	CreateHabit(habit *models.Habit) error
	SaveHabit(habit *models.Habit) error
	DeleteHabit(habitID uint, userID uint) error
	ListCompletions(userID uint) ([]models.HabitCompletion, error)
	InsertCompletion(completion *models.HabitCompletion) (bool, error)
	DeleteCompletion(userID uint, habitID uint, dayStart time.Time, dayEnd time.Time) error
}

type GoalInput struct {
	Title       string
	Description string
	TargetDate  *time.Time
	Status      string
}

type HabitInput struct {
	Name        string
	Description string
	Icon        string
	Frequency   string
	GoalID      *uint
	TargetCount int
}

type HabitCompletionResult struct {
	Completion models.HabitCompletion `json:"completion"`
	Inserted   bool                   `json:"inserted"`
	NewBadges  []models.Badge         `json:"new_badges"`
}

type HabitStats struct {
	HabitID          uint   `json:"habit_id"`
	Name             string `json:"name"`
	CurrentStreak    int    `json:"current_streak"`
	CompletionRate7  int    `json:"completion_rate_7"`
	CompletionRate30 int    `json:"completion_rate_30"`
	TotalCompletions int    `json:"total_completions"`
	CompletedToday   bool   `json:"completed_today"`
}

// HabitService owns goals, habits and their daily completions. Every
// operation requires the habit tracking feature.
type HabitService struct {
	habits   HabitRepository
	badges   DayBadgeEvaluator
	location *time.Location
	now      func() time.Time
}

func NewHabitService(habits HabitRepository, badges DayBadgeEvaluator, location *time.Location) *HabitService {
	if location == nil {
		location = time.UTC
	}
	return &HabitService{
		habits:   habits,
		badges:   badges,
		location: location,
		now:      time.Now,
	}
}

func (service *HabitService) authorize(user *models.User) error {
	return RequireFeature(user, FeatureHabitTracking, service.now())
}

func (service *HabitService) ListGoals(user *models.User) ([]models.Goal, error) {
	if err := service.authorize(user); err != nil {
		return nil, err
	}
	goals, err := service.habits.ListGoals(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHabitsLoadFailed, err)
	}
	return goals, nil
}

func (service *HabitService) CreateGoal(user *models.User, input GoalInput) (models.Goal, error) {
	if err := service.authorize(user); err != nil {
		return models.Goal{}, err
	}
	normalized, err := normalizeGoalInput(input)
	if err != nil {
		return models.Goal{}, err
	}

	goal := models.Goal{
		UserID:      user.ID,
		Title:       normalized.Title,
		Description: normalized.Description,
		TargetDate:  normalized.TargetDate,
		Status:      normalized.Status,
	}
	if err := service.habits.CreateGoal(&goal); err != nil {
		return models.Goal{}, fmt.Errorf("%w: %v", ErrCreateGoalFailed, err)
	}
	return goal, nil
}

func (service *HabitService) UpdateGoal(user *models.User, goalID uint, input GoalInput) (models.Goal, error) {
	if err := service.authorize(user); err != nil {
		return models.Goal{}, err
	}
	normalized, err := normalizeGoalInput(input)
	if err != nil {
		return models.Goal{}, err
	}
	goal, err := service.habits.FindGoalForUser(goalID, user.ID)
	if err != nil {
		return models.Goal{}, fmt.Errorf("%w: %v", ErrGoalNotFound, err)
	}

	goal.Title = normalized.Title
	goal.Description = normalized.Description
	goal.TargetDate = normalized.TargetDate
	goal.Status = normalized.Status
	if err := service.habits.SaveGoal(&goal); err != nil {
		return models.Goal{}, fmt.Errorf("%w: %v", ErrUpdateGoalFailed, err)
	}
	return goal, nil
}

func (service *HabitService) DeleteGoal(user *models.User, goalID uint) error {
	if err := service.authorize(user); err != nil {
		return err
	}
	if _, err := service.habits.FindGoalForUser(goalID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrGoalNotFound, err)
	}
	if err := service.habits.DeleteGoal(goalID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteGoalFailed, err)
	}
	return nil
}

func (service *HabitService) ListHabits(user *models.User) ([]models.Habit, error) {
	if err := service.authorize(user); err != nil {
		return nil, err
	}
	habits, err := service.habits.ListHabits(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHabitsLoadFailed, err)
	}
	return habits, nil
}

// CreateHabit stores the habit and runs a badge pass, since the habit count
// drives the Multi-Tracker badge.
func (service *HabitService) CreateHabit(user *models.User, input HabitInput) (models.Habit, []models.Badge, error) {
	if err := service.authorize(user); err != nil {
		return models.Habit{}, nil, err
	}
	normalized, err := service.normalizeHabitInput(user.ID, input)
	if err != nil {
		return models.Habit{}, nil, err
	}

	habit := models.Habit{
		UserID:      user.ID,
		GoalID:      normalized.GoalID,
		Name:        normalized.Name,
		Description: normalized.Description,
		Icon:        normalized.Icon,
		Frequency:   normalized.Frequency,
		TargetCount: normalized.TargetCount,
	}
	if err := service.habits.CreateHabit(&habit); err != nil {
		return models.Habit{}, nil, fmt.Errorf("%w: %v", ErrCreateHabitFailed, err)
	}
	return habit, service.evaluateBadges(user.ID), nil
}

func (service *HabitService) UpdateHabit(user *models.User, habitID uint, input HabitInput) (models.Habit, error) {
	if err := service.authorize(user); err != nil {
		return models.Habit{}, err
	}
	habit, err := service.habits.FindHabitForUser(habitID, user.ID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("%w: %v", ErrHabitNotFound, err)
	}
	normalized, err := service.normalizeHabitInput(user.ID, input)
	if err != nil {
		return models.Habit{}, err
	}

	habit.GoalID = normalized.GoalID
	habit.Name = normalized.Name
	habit.Description = normalized.Description
	habit.Icon = normalized.Icon
	habit.Frequency = normalized.Frequency
	habit.TargetCount = normalized.TargetCount
	if err := service.habits.SaveHabit(&habit); err != nil {
		return models.Habit{}, fmt.Errorf("%w: %v", ErrUpdateHabitFailed, err)
	}
	return habit, nil
}

// DeleteHabit removes the habit together with its completions.
func (service *HabitService) DeleteHabit(user *models.User, habitID uint) error {
	if err := service.authorize(user); err != nil {
		return err
	}
	if _, err := service.habits.FindHabitForUser(habitID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrHabitNotFound, err)
	}
	if err := service.habits.DeleteHabit(habitID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteHabitFailed, err)
	}
	return nil
}

// CompleteHabit marks the habit done on day. Completing twice is a no-op
// reported through Inserted.
func (service *HabitService) CompleteHabit(user *models.User, habitID uint, day time.Time, note string) (HabitCompletionResult, error) {
	if err := service.authorize(user); err != nil {
		return HabitCompletionResult{}, err
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxHabitNoteLength {
		return HabitCompletionResult{}, ErrInvalidHabitNote
	}
	if _, err := service.habits.FindHabitForUser(habitID, user.ID); err != nil {
		return HabitCompletionResult{}, fmt.Errorf("%w: %v", ErrHabitNotFound, err)
	}

	completion := models.HabitCompletion{
		UserID:        user.ID,
		HabitID:       habitID,
		CompletedDate: civilDay(day),
		Note:          note,
	}
	inserted, err := service.habits.InsertCompletion(&completion)
	if err != nil {
		return HabitCompletionResult{}, fmt.Errorf("%w: %v", ErrHabitCompletionFailed, err)
	}

	newBadges := []models.Badge{}
	if inserted {
		newBadges = service.evaluateBadges(user.ID)
	}
	return HabitCompletionResult{Completion: completion, Inserted: inserted, NewBadges: newBadges}, nil
}

func (service *HabitService) evaluateBadges(userID uint) []models.Badge {
	if service.badges == nil {
		return []models.Badge{}
	}
	return service.badges.Evaluate(userID, service.now())
}

func (service *HabitService) UncompleteHabit(user *models.User, habitID uint, day time.Time) error {
	if err := service.authorize(user); err != nil {
		return err
	}
	if _, err := service.habits.FindHabitForUser(habitID, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrHabitNotFound, err)
	}
	dayStart, dayEnd := CalendarDayRange(day)
	if err := service.habits.DeleteCompletion(user.ID, habitID, dayStart, dayEnd); err != nil {
		return fmt.Errorf("%w: %v", ErrHabitCompletionFailed, err)
	}
	return nil
}

func (service *HabitService) HabitStats(user *models.User, habitID uint) (HabitStats, error) {
	if err := service.authorize(user); err != nil {
		return HabitStats{}, err
	}
	habit, err := service.habits.FindHabitForUser(habitID, user.ID)
	if err != nil {
		return HabitStats{}, fmt.Errorf("%w: %v", ErrHabitNotFound, err)
	}
	completions, err := service.habits.ListCompletions(user.ID)
	if err != nil {
		return HabitStats{}, fmt.Errorf("%w: %v", ErrHabitsLoadFailed, err)
	}

	today := service.Today(user)
	total := 0
	completedToday := false
	for _, completion := range completions {
		if completion.HabitID != habitID {
			continue
		}
		total++
		if sameCalendarDay(completion.CompletedDate, today) {
			completedToday = true
		}
	}

	return HabitStats{
		HabitID:          habit.ID,
		Name:             habit.Name,
		CurrentStreak:    HabitStreak(completions, habitID, today),
		CompletionRate7:  HabitCompletionRate(completions, habitID, habitShortRateWindow, today),
		CompletionRate30: HabitCompletionRate(completions, habitID, habitLongRateWindow, today),
		TotalCompletions: total,
		CompletedToday:   completedToday,
	}, nil
}

func (service *HabitService) Today(user *models.User) time.Time {
	return CalendarDate(service.now(), UserLocation(user, service.location))
}

func normalizeGoalInput(input GoalInput) (GoalInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))

	if input.Title == "" || utf8.RuneCountInString(input.Title) > maxGoalTitleLength {
		return input, ErrInvalidGoalTitle
	}
	switch input.Status {
	case "":
		input.Status = models.GoalStatusActive
	case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusArchived:
	default:
		return input, ErrInvalidGoalStatus
	}
	if input.TargetDate != nil {
		target := civilDay(*input.TargetDate)
		input.TargetDate = &target
	}
	return input, nil
}

func (service *HabitService) normalizeHabitInput(userID uint, input HabitInput) (HabitInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Icon = strings.TrimSpace(input.Icon)
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))

	if input.Name == "" || utf8.RuneCountInString(input.Name) > maxHabitNameLength {
		return input, ErrInvalidHabitName
	}
	if input.Icon == "" {
		input.Icon = models.DefaultHabitIcon
	}
	switch input.Frequency {
	case "":
		input.Frequency = models.HabitFrequencyDaily
	case models.HabitFrequencyDaily, models.HabitFrequencyWeekly:
	default:
		return input, ErrInvalidHabitFrequency
	}
	if input.TargetCount == 0 {
		input.TargetCount = 1
	}
	if input.TargetCount < 1 || input.TargetCount > maxHabitTargetCount {
		return input, ErrInvalidHabitTargetCount
	}
	if input.GoalID != nil {
		if _, err := service.habits.FindGoalForUser(*input.GoalID, userID); err != nil {
			return input, fmt.Errorf("%w: %v", ErrGoalNotFound, err)
		}
	}
	return input, nil
}
