package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	DefaultPromptModel   = "gpt-3.5-turbo"
	DefaultPromptBaseURL = "https://api.openai.com/v1"

	promptTemperature    = 0.8
	promptMaxTokens      = 100
	maxPromptQuestionLen = 500
	maxPromptContextLen  = 1000
	promptHistoryLimit   = 20

	promptSystemMessage = `You are a thoughtful money mindset coach helping users reflect on their financial journey.
Generate a single insightful reflection prompt based on the user's question and context.
The prompt should be personal, thought-provoking, and encourage self-awareness about money habits and beliefs.
Keep the response to 1-2 sentences maximum.`
)

var (
	ErrPromptNotConfigured   = errors.New("ai prompt generation not configured")
	ErrPromptQuestionMissing = errors.New("question is required")
	ErrPromptInputTooLong    = errors.New("prompt input too long")
	ErrPromptUpstreamFailed  = errors.New("ai provider request failed")
	ErrPromptEmptyResponse   = errors.New("no response from ai provider")
	ErrPromptHistoryFailed   = errors.New("prompt history unavailable")
)

type PromptHistoryRepository interface {
	CreatePromptHistory(record *models.AIPromptHistory) error
	ListPromptHistory(userID uint, limit int) ([]models.AIPromptHistory, error)
}

type PromptConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

type PromptRequest struct {
	Question string   `json:"question"`
	Goals    []string `json:"goals,omitempty"`
	Context  string   `json:"context,omitempty"`
}

type PromptResult struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt,omitempty"`
	Error   string `json:"error,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PromptService asks an OpenAI-compatible chat completions endpoint for a
// personal reflection prompt.
type PromptService struct {
	history PromptHistoryRepository
	config  PromptConfig
	client  *http.Client
}

func NewPromptService(history PromptHistoryRepository, config PromptConfig) *PromptService {
	config.APIKey = strings.TrimSpace(config.APIKey)
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = DefaultPromptBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if strings.TrimSpace(config.Model) == "" {
		config.Model = DefaultPromptModel
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PromptService{history: history, config: config, client: client}
}

func (service *PromptService) Configured() bool {
	return service.config.APIKey != ""
}

// Generate returns the prompt and stores the question and answer pair. A
// history write failure is logged and does not fail the request.
func (service *PromptService) Generate(ctx context.Context, user *models.User, request PromptRequest, now time.Time) (string, error) {
	if err := RequireFeature(user, FeatureCustomAIPrompts, now); err != nil {
		return "", err
	}
	if !service.Configured() {
		return "", ErrPromptNotConfigured
	}

	question := strings.TrimSpace(request.Question)
	if question == "" {
		return "", ErrPromptQuestionMissing
	}
	extra := strings.TrimSpace(request.Context)
	if utf8.RuneCountInString(question) > maxPromptQuestionLen || utf8.RuneCountInString(extra) > maxPromptContextLen {
		return "", ErrPromptInputTooLong
	}

	goals := request.Goals
	if len(goals) == 0 {
		goals = user.Goals
	}
	prompt, err := service.complete(ctx, buildPromptUserMessage(question, goals, extra))
	if err != nil {
		return "", err
	}

	record := models.AIPromptHistory{UserID: user.ID, QuestionAsked: question, AIResponse: prompt, CreatedAt: now.UTC()}
	if err := service.history.CreatePromptHistory(&record); err != nil {
		logger.Warn("prompt history insert failed", "user_id", user.ID, "err", err)
	}
	return prompt, nil
}

func (service *PromptService) History(user *models.User, now time.Time) ([]models.AIPromptHistory, error) {
	if err := RequireFeature(user, FeatureCustomAIPrompts, now); err != nil {
		return nil, err
	}
	records, err := service.history.ListPromptHistory(user.ID, promptHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPromptHistoryFailed, err)
	}
	return records, nil
}

func buildPromptUserMessage(question string, goals []string, extra string) string {
	var builder strings.Builder
	builder.WriteString("User's question: ")
	builder.WriteString(question)

	cleaned := make([]string, 0, len(goals))
	for _, goal := range goals {
		if trimmed := strings.TrimSpace(goal); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) > 0 {
		builder.WriteString("\nTheir financial goals: ")
		builder.WriteString(strings.Join(cleaned, ", "))
	}
	if extra != "" {
		builder.WriteString("\nAdditional context: ")
		builder.WriteString(extra)
	}
	return builder.String()
}

func (service *PromptService) complete(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: service.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: promptSystemMessage},
			{Role: "user", Content: userMessage},
		},
		Temperature: promptTemperature,
		MaxTokens:   promptMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrPromptUpstreamFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, service.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrPromptUpstreamFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+service.config.APIKey)

	resp, err := service.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPromptUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrPromptUpstreamFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	decoded := chatCompletionResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrPromptUpstreamFailed, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrPromptUpstreamFailed, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrPromptEmptyResponse
	}
	prompt := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if prompt == "" {
		return "", ErrPromptEmptyResponse
	}
	return prompt, nil
}
