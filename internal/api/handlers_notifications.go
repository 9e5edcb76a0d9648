package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type remindersResponse struct {
	Reminders    []models.NotificationPreference `json:"reminders"`
	MaxReminders int                             `json:"max_reminders"`
}

type reminderCreatedResponse struct {
	models.NotificationPreference
	NewBadges []models.Badge `json:"new_badges"`
}

type pushSubscriptionInput struct {
	Endpoint string            `json:"endpoint"`
	Keys     map[string]string `json:"keys"`
}

func (handler *Handler) ListReminders(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	reminders, err := handler.notificationService.ListReminders(user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if reminders == nil {
		reminders = []models.NotificationPreference{}
	}
	premium := services.IsPremium(user.Profile(), handler.now())
	return c.JSON(remindersResponse{
		Reminders:    reminders,
		MaxReminders: services.MaxReminders(premium),
	})
}

func (handler *Handler) CreateReminder(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := services.ReminderInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	reminder, newBadges, err := handler.notificationService.CreateReminder(user, input, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reminderCreatedResponse{NotificationPreference: reminder, NewBadges: newBadges})
}

func (handler *Handler) UpdateReminder(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	input := services.ReminderInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	reminder, err := handler.notificationService.UpdateReminder(user, id, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(reminder)
}

func (handler *Handler) DeleteReminder(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
	}
	if err := handler.notificationService.DeleteReminder(user, id); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) RegisterPushSubscription(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := pushSubscriptionInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	subscription, err := handler.notificationService.RegisterPushSubscription(user, input.Endpoint, input.Keys)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(subscription)
}

func (handler *Handler) UnregisterPushSubscription(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := pushSubscriptionInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}
	if err := handler.notificationService.UnregisterPushSubscription(user, input.Endpoint); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}
