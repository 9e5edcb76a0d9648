package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if errors.Is(err, services.ErrSessionTokenRevoked) || errors.Is(err, services.ErrSessionTokenExpired) {
			handler.clearAuthCookie(c)
		}
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	c.Locals(contextUserKey, user)
	if language := strings.TrimSpace(user.Language); language != "" {
		c.Locals(contextLanguageKey, handler.i18n.NormalizeLanguage(language))
	}
	if user.MustChangePassword && !allowedDuringPasswordChange(c) {
		return handler.apiError(c, fiber.StatusForbidden, "error.password_change_required")
	}
	return c.Next()
}

// allowedDuringPasswordChange lists what an account holding a temporary
// password may still reach.
func allowedDuringPasswordChange(c *fiber.Ctx) bool {
	path := strings.TrimRight(c.Path(), "/")
	switch {
	case path == "/api/settings/password" && c.Method() == fiber.MethodPost:
		return true
	case path == "/api/profile" && c.Method() == fiber.MethodGet:
		return true
	}
	return false
}

// authenticateRequest accepts the session cookie or an Authorization
// bearer header carrying the same token.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	rawToken := bearerToken(c.Get(fiber.HeaderAuthorization))
	if rawToken == "" {
		rawToken = strings.TrimSpace(c.Cookies(authCookieName))
	}
	if rawToken == "" {
		return nil, services.ErrSessionTokenMissing
	}

	claims, err := services.ParseSessionToken(handler.secretKey, rawToken, handler.now())
	if err != nil {
		return nil, err
	}
	user, err := handler.authService.UserForSession(claims)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(ttl),
	})
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
