package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/services"
)

type errorMapping struct {
	target error
	status int
	key    string
}

// serviceErrorMappings is matched in order with errors.Is. Anything not
// listed is reported as an internal error.
var serviceErrorMappings = []errorMapping{
	{services.ErrPremiumRequired, fiber.StatusForbidden, "error.premium_required"},

	{services.ErrAuthEmailExists, fiber.StatusConflict, "error.email_taken"},
	{services.ErrWeakPassword, fiber.StatusBadRequest, "error.weak_password"},
	{services.ErrSettingsWeakPassword, fiber.StatusBadRequest, "error.weak_password"},
	{services.ErrPasswordTooLong, fiber.StatusBadRequest, "error.password_too_long"},
	{services.ErrSettingsPasswordMismatch, fiber.StatusBadRequest, "error.password_mismatch"},
	{services.ErrSettingsInvalidCurrentPassword, fiber.StatusBadRequest, "error.invalid_password"},
	{services.ErrSettingsPasswordMissing, fiber.StatusBadRequest, "error.invalid_password"},
	{services.ErrSettingsPasswordInvalid, fiber.StatusBadRequest, "error.invalid_password"},
	{services.ErrSettingsNewPasswordMustDiffer, fiber.StatusBadRequest, "error.password_unchanged"},
	{services.ErrSettingsPasswordChangeInvalidInput, fiber.StatusBadRequest, "error.invalid_input"},

	{services.ErrDayTextRequired, fiber.StatusBadRequest, "error.text_required"},
	{services.ErrDayTextTooLong, fiber.StatusBadRequest, "error.text_too_long"},
	{services.ErrInvalidRating, fiber.StatusBadRequest, "error.invalid_rating"},
	{services.ErrUnknownQuickAction, fiber.StatusBadRequest, "error.unknown_action"},
	{services.ErrActionAlreadyCommitted, fiber.StatusConflict, "error.action_already_committed"},
	{services.ErrNoActionCommitted, fiber.StatusConflict, "error.no_action_committed"},
	{services.ErrActionOutcomeRecorded, fiber.StatusConflict, "error.action_outcome_recorded"},
	{services.ErrDeletePolicyRejected, fiber.StatusInternalServerError, "error.delete_rejected"},

	{services.ErrRangeFromDateInvalid, fiber.StatusBadRequest, "error.invalid_date_range"},
	{services.ErrRangeToDateInvalid, fiber.StatusBadRequest, "error.invalid_date_range"},
	{services.ErrRangeInvalid, fiber.StatusBadRequest, "error.invalid_date_range"},

	{services.ErrSettingsDisplayNameTooLong, fiber.StatusBadRequest, "error.invalid_profile"},
	{services.ErrSettingsInvalidTimezone, fiber.StatusBadRequest, "error.invalid_profile"},
	{services.ErrSettingsInvalidLanguage, fiber.StatusBadRequest, "error.invalid_profile"},
	{services.ErrSettingsInvalidGoals, fiber.StatusBadRequest, "error.invalid_profile"},
	{services.ErrInvalidReminderTime, fiber.StatusBadRequest, "error.invalid_reminder_time"},

	{services.ErrReminderLimitReached, fiber.StatusForbidden, "error.reminder_limit"},
	{services.ErrReminderNotFound, fiber.StatusNotFound, "error.not_found"},
	{services.ErrReminderMessageTooLong, fiber.StatusBadRequest, "error.invalid_input"},
	{services.ErrInvalidPushSubscription, fiber.StatusBadRequest, "error.invalid_subscription"},

	{services.ErrInvalidGoalTitle, fiber.StatusBadRequest, "error.invalid_goal"},
	{services.ErrInvalidGoalStatus, fiber.StatusBadRequest, "error.invalid_goal"},
	{services.ErrGoalNotFound, fiber.StatusNotFound, "error.not_found"},
	{services.ErrInvalidHabitName, fiber.StatusBadRequest, "error.invalid_habit"},
	{services.ErrInvalidHabitFrequency, fiber.StatusBadRequest, "error.invalid_habit"},
	{services.ErrInvalidHabitTargetCount, fiber.StatusBadRequest, "error.invalid_habit"},
	{services.ErrInvalidHabitNote, fiber.StatusBadRequest, "error.invalid_habit"},
	{services.ErrHabitNotFound, fiber.StatusNotFound, "error.not_found"},

	{services.ErrPromptNotConfigured, fiber.StatusServiceUnavailable, "error.ai_unavailable"},
	{services.ErrPromptQuestionMissing, fiber.StatusBadRequest, "error.question_required"},
	{services.ErrPromptInputTooLong, fiber.StatusBadRequest, "error.invalid_input"},
	{services.ErrPromptUpstreamFailed, fiber.StatusBadGateway, "error.ai_failed"},
	{services.ErrPromptEmptyResponse, fiber.StatusBadGateway, "error.ai_failed"},

	{services.ErrCoachNotAssigned, fiber.StatusNotFound, "error.coach_unassigned"},
	{services.ErrCoachLimitReached, fiber.StatusForbidden, "error.coach_limit"},
	{services.ErrCoachMessageRequired, fiber.StatusBadRequest, "error.text_required"},
	{services.ErrCoachMessageTooLong, fiber.StatusBadRequest, "error.text_too_long"},
}

func classifyServiceError(err error) (int, string) {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.target) {
			return mapping.status, mapping.key
		}
	}
	return fiber.StatusInternalServerError, "error.internal"
}

func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	status, key := classifyServiceError(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(requestIDHeader),
			"err", err,
		)
	}
	return handler.apiError(c, status, key)
}

func (handler *Handler) apiError(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": handler.i18n.Translate(handler.currentLanguage(c), key),
		"code":  key,
	})
}

// ErrorHandler renders framework errors, such as unknown routes, in the same
// JSON shape as handler errors.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		key := "error.internal"
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			key = "error.not_found"
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			key = "error.invalid_input"
		}
		return handler.apiError(c, fiberErr.Code, key)
	}
	return handler.respondServiceError(c, err)
}
