package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type profileResponse struct {
	User         *models.User                `json:"user"`
	Subscription services.SubscriptionStatus `json:"subscription"`
}

type profileInput struct {
	DisplayName         *string   `json:"display_name"`
	Timezone            *string   `json:"timezone"`
	Language            *string   `json:"language"`
	Goals               *[]string `json:"goals"`
	NotificationMorning *string   `json:"notification_morning"`
	NotificationEvening *string   `json:"notification_evening"`
}

type deleteAccountInput struct {
	Password string `json:"password" form:"password"`
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(profileResponse{
		User:         user,
		Subscription: services.BuildSubscriptionStatus(user.Profile(), handler.now()),
	})
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := profileInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	updated, err := handler.settingsService.UpdateProfile(user.ID, services.ProfileUpdate{
		DisplayName:         input.DisplayName,
		Timezone:            input.Timezone,
		Language:            input.Language,
		Goals:               input.Goals,
		NotificationMorning: input.NotificationMorning,
		NotificationEvening: input.NotificationEvening,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if input.Language != nil {
		handler.setLanguageCookie(c, updated.Language)
	}
	return c.JSON(profileResponse{
		User:         &updated,
		Subscription: services.BuildSubscriptionStatus(updated.Profile(), handler.now()),
	})
}

// ChangePassword revokes every existing session for the account and hands
// the caller a fresh one.
func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := services.PasswordChange{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	if err := handler.settingsService.ChangePassword(user, input); err != nil {
		return handler.respondServiceError(c, err)
	}
	logger.Info("password changed", "user_id", user.ID)
	return handler.startSession(c, *user, defaultAuthTokenTTL, fiber.StatusOK)
}

func (handler *Handler) ResetAllData(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	if err := handler.settingsService.ResetAllData(user.ID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) ResetBadges(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	if err := handler.settingsService.ResetBadges(user.ID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return okResponse(c)
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := deleteAccountInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	if err := handler.settingsService.DeleteAccount(user, input.Password); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.clearAuthCookie(c)
	return okResponse(c)
}
