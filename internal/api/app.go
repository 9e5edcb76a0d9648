package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/terraincognita07/mindful/internal/logger"
)

const defaultBodyLimit = 1 << 20

type AppOptions struct {
	// AllowOrigins is a comma separated CORS allow list. Empty disables CORS.
	AllowOrigins string
	BodyLimit    int
}

func NewApp(handler *Handler, options AppOptions) *fiber.App {
	bodyLimit := options.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:               "Mindful Money",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          handler.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    requestIDHeader,
		Generator: uuid.NewString,
	}))
	app.Use(handler.RequestLogger)
	app.Use(compress.New())
	if origins := strings.TrimSpace(options.AllowOrigins); origins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Accept-Language",
			AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
			AllowCredentials: origins != "*",
		}))
	}
	app.Use(handler.LanguageMiddleware)

	RegisterRoutes(app, handler)
	return app
}

// RequestLogger writes one structured line per request. Handler errors are
// rendered here so the logged status matches the response.
func (handler *Handler) RequestLogger(c *fiber.Ctx) error {
	started := time.Now()
	if err := c.Next(); err != nil {
		if renderErr := handler.ErrorHandler(c, err); renderErr != nil {
			return renderErr
		}
	}

	status := c.Response().StatusCode()
	keyvals := []interface{}{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(started).Round(time.Microsecond),
		"request_id", c.GetRespHeader(requestIDHeader),
	}
	if status >= fiber.StatusInternalServerError {
		logger.Warn("request", keyvals...)
		return nil
	}
	logger.Debug("request", keyvals...)
	return nil
}
