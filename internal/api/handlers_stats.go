package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type badgeEvaluationResponse struct {
	NewBadges []models.Badge `json:"new_badges"`
}

func (handler *Handler) GetStats(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(handler.statsService.UserStats(user))
}

func (handler *Handler) GetAnalytics(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	now := handler.now()
	if err := services.RequireFeature(user, services.FeatureAdvancedAnalytics, now); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.statsService.Analytics(user, now))
}

func (handler *Handler) GetBadges(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	overview, err := handler.badgeService.Overview(user.ID, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(overview)
}

func (handler *Handler) EvaluateBadges(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	awarded := handler.badgeService.Evaluate(user.ID, handler.now())
	if awarded == nil {
		awarded = []models.Badge{}
	}
	return c.JSON(badgeEvaluationResponse{NewBadges: awarded})
}
