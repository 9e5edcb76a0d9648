package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type credentialsInput struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
	RememberMe  bool   `json:"remember_me" form:"remember_me"`
}

type sessionResponse struct {
	Token        string                      `json:"token"`
	ExpiresAt    time.Time                   `json:"expires_at"`
	User         models.User                 `json:"user"`
	Subscription services.SubscriptionStatus `json:"subscription"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	now := handler.now()
	user, err := handler.authService.Register(input.Email, input.Password, input.DisplayName, now)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_input")
		}
		return handler.respondServiceError(c, err)
	}

	logger.Info("user registered", "user_id", user.ID)
	return handler.startSession(c, user, defaultAuthTokenTTL, fiber.StatusCreated)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, input.Email)
	if handler.loginLimiter.blocked(limiterKey, now) {
		return handler.apiError(c, fiber.StatusTooManyRequests, "error.too_many_attempts")
	}

	user, err := handler.authService.Login(input.Email, input.Password)
	if err != nil {
		handler.loginLimiter.recordFailure(limiterKey, now)
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			return handler.apiError(c, fiber.StatusUnauthorized, "error.invalid_credentials")
		}
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	ttl := defaultAuthTokenTTL
	if input.RememberMe {
		ttl = rememberAuthTokenTTL
	}
	return handler.startSession(c, user, ttl, fiber.StatusOK)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return okResponse(c)
}

func (handler *Handler) startSession(c *fiber.Ctx, user models.User, ttl time.Duration, status int) error {
	now := handler.now()
	token, err := services.BuildSessionToken(handler.secretKey, user, ttl, now)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.setAuthCookie(c, token, ttl)
	handler.setLanguageCookie(c, user.Language)

	return c.Status(status).JSON(sessionResponse{
		Token:        token,
		ExpiresAt:    now.Add(ttl).UTC(),
		User:         user,
		Subscription: services.BuildSubscriptionStatus(user.Profile(), now),
	})
}
