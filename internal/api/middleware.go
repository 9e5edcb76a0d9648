package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	authCookieName     = "mindful_auth"
	languageCookieName = "mindful_lang"
	contextUserKey     = "current_user"
	contextLanguageKey = "current_language"
	requestIDHeader    = "X-Request-ID"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}
