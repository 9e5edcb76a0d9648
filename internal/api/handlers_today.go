package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type todayResponse struct {
	Date    string                `json:"date"`
	Entry   models.DailyEntry     `json:"entry"`
	Content services.DailyContent `json:"content"`
	Stats   services.UserStats    `json:"stats"`
}

type textInput struct {
	Text string `json:"text" form:"text"`
}

type actionInput struct {
	QuickActionID uint `json:"quick_action_id" form:"quick_action_id"`
}

type actionOutcomeInput struct {
	Succeeded *bool `json:"succeeded"`
}

type reflectionInput struct {
	Text   string `json:"text" form:"text"`
	Rating int    `json:"rating" form:"rating"`
}

type entriesResponse struct {
	Entries []models.DailyEntry `json:"entries"`
}

func (handler *Handler) GetToday(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	day, err := handler.requestDay(user, c.Query("date"))
	if err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_date_range")
	}

	entry, err := handler.dayService.EntryForDate(user, day)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(todayResponse{
		Date:    services.FormatCalendarDate(day),
		Entry:   entry,
		Content: services.DailyContentFor(day),
		Stats:   handler.statsService.UserStats(user),
	})
}

func (handler *Handler) SetIntention(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := textInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	result, err := handler.dayService.SetIntention(user, input.Text, handler.now())
	return handler.respondDayResult(c, result, err)
}

func (handler *Handler) CommitAction(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := actionInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	result, err := handler.dayService.CommitAction(user, input.QuickActionID, handler.now())
	return handler.respondDayResult(c, result, err)
}

func (handler *Handler) RecordActionOutcome(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := actionOutcomeInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	if input.Succeeded == nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	result, err := handler.dayService.RecordActionOutcome(user, *input.Succeeded, handler.now())
	return handler.respondDayResult(c, result, err)
}

func (handler *Handler) CompleteReflection(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := reflectionInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	result, err := handler.dayService.CompleteReflection(user, input.Text, input.Rating, handler.now())
	return handler.respondDayResult(c, result, err)
}

func (handler *Handler) ResetToday(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	if err := handler.dayService.ResetToday(user, handler.now()); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) ListEntries(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	from, to, err := services.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	entries, err := handler.dayService.ListEntries(user, from, to)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if entries == nil {
		entries = []models.DailyEntry{}
	}
	return c.JSON(entriesResponse{Entries: entries})
}

func (handler *Handler) respondDayResult(c *fiber.Ctx, result services.DayActionResult, err error) error {
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if result.NewBadges == nil {
		result.NewBadges = []models.Badge{}
	}
	return c.JSON(result)
}
