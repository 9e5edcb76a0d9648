package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

type promptHistoryResponse struct {
	History []models.AIPromptHistory `json:"history"`
}

// GeneratePrompt always answers in the PromptResult envelope so clients can
// branch on success without parsing the error shape.
func (handler *Handler) GeneratePrompt(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	request := services.PromptRequest{}
	if err := c.BodyParser(&request); err != nil {
		return handler.promptFailure(c, fiber.StatusBadRequest, "error.invalid_input")
	}

	prompt, err := handler.promptService.Generate(c.UserContext(), user, request, handler.now())
	if err != nil {
		status, key := classifyServiceError(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("prompt generation failed", "user_id", user.ID, "err", err)
		}
		return handler.promptFailure(c, status, key)
	}
	return c.JSON(services.PromptResult{Success: true, Prompt: prompt})
}

func (handler *Handler) promptFailure(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(services.PromptResult{
		Success: false,
		Error:   handler.i18n.Translate(handler.currentLanguage(c), key),
	})
}

func (handler *Handler) PromptHistory(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	history, err := handler.promptService.History(user, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if history == nil {
		history = []models.AIPromptHistory{}
	}
	return c.JSON(promptHistoryResponse{History: history})
}

func (handler *Handler) GetCoachConversation(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	conversation, err := handler.coachService.Conversation(user, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(conversation)
}

func (handler *Handler) SendCoachMessage(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := textInput{}
	if !handler.parseBody(c, &input) {
		return nil
	}

	message, err := handler.coachService.Send(user, input.Text, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
