package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func parseIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseBody decodes the request body and answers 400 itself on failure.
func (handler *Handler) parseBody(c *fiber.Ctx, target any) bool {
	if err := c.BodyParser(target); err != nil {
		_ = handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
		return false
	}
	return true
}

// requestDay resolves an optional YYYY-MM-DD value, defaulting to the
// user's today.
func (handler *Handler) requestDay(user *models.User, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return handler.dayService.Today(user, handler.now()), nil
	}
	return services.ParseCalendarDate(raw)
}

func okResponse(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
