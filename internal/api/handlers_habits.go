package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type goalInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date"`
	Status      string `json:"status"`
}

type habitInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Frequency   string `json:"frequency"`
	GoalID      *uint  `json:"goal_id"`
	TargetCount int    `json:"target_count"`
}

type habitCompletionInput struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

type goalsResponse struct {
	Goals []models.Goal `json:"goals"`
}

type habitsResponse struct {
	Habits []models.Habit `json:"habits"`
}

// habitCreatedResponse is the habit plus any badges its creation unlocked.
type habitCreatedResponse struct {
	models.Habit
	NewBadges []models.Badge `json:"new_badges"`
}

func (input goalInput) toService() (services.GoalInput, bool) {
	result := services.GoalInput{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	if raw := strings.TrimSpace(input.TargetDate); raw != "" {
		target, err := services.ParseCalendarDate(raw)
		if err != nil {
			return services.GoalInput{}, false
		}
		result.TargetDate = &target
	}
	return result, true
}

func (input habitInput) toService() services.HabitInput {
	return services.HabitInput{
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
		Frequency:   input.Frequency,
		GoalID:      input.GoalID,
		TargetCount: input.TargetCount,
	}
}

func (handler *Handler) ListGoals(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	goals, err := handler.habitService.ListGoals(user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	return c.JSON(goalsResponse{Goals: goals})
}

func (handler *Handler) CreateGoal(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := goalInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	payload, ok := input.toService()
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_goal")
	}

	goal, err := handler.habitService.CreateGoal(user, payload)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (handler *Handler) UpdateGoal(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	input := goalInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	payload, ok := input.toService()
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_goal")
	}

	goal, err := handler.habitService.UpdateGoal(user, id, payload)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(goal)
}

func (handler *Handler) DeleteGoal(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.habitService.DeleteGoal(user, id); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) ListHabits(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	habits, err := handler.habitService.ListHabits(user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return c.JSON(habitsResponse{Habits: habits})
}

func (handler *Handler) CreateHabit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := habitInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	habit, newBadges, err := handler.habitService.CreateHabit(user, input.toService())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(habitCreatedResponse{Habit: habit, NewBadges: newBadges})
}

func (handler *Handler) UpdateHabit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	input := habitInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	habit, err := handler.habitService.UpdateHabit(user, id, input.toService())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(habit)
}

func (handler *Handler) DeleteHabit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.habitService.DeleteHabit(user, id); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) CompleteHabit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	input := habitCompletionInput{}
	if len(c.Body()) > 0 && !handler.parseBody(c, &input) {
		return nil
	}
	day, ok := handler.completionDay(c, user, input.Date)
	if !ok {
		return nil
	}

	result, err := handler.habitService.CompleteHabit(user, id, day, input.Note)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if result.Inserted {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

func (handler *Handler) UncompleteHabit(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	day, ok := handler.completionDay(c, user, c.Query("date"))
	if !ok {
		return nil
	}

	if err := handler.habitService.UncompleteHabit(user, id, day); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) GetHabitStats(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	stats, err := handler.habitService.HabitStats(user, id)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(stats)
}

func (handler *Handler) completionDay(c *fiber.Ctx, user *models.User, raw string) (time.Time, bool) {
	day, err := handler.requestDay(user, raw)
	if err != nil {
		_ = handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
		return time.Time{}, false
	}
	return day, true
}
