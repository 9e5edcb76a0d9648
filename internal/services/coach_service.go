package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/mindful/internal/models"
)

const (
	maxCoachMessageLength = 2000
	maxCoachNameLength    = 100
)

var (
	ErrCoachNotAssigned     = errors.New("no coach assigned")
	ErrCoachLimitReached    = errors.New("coach message limit reached")
	ErrCoachMessageRequired = errors.New("coach message required")
	ErrCoachMessageTooLong  = errors.New("coach message too long")
	ErrCoachNameInvalid     = errors.New("coach name invalid")
	ErrCoachLoadFailed      = errors.New("coach load failed")
	ErrCoachSaveFailed      = errors.New("coach save failed")
)

type CoachRepository interface {
	FindAssignment(userID uint) (models.CoachAssignment, bool, error)
	SaveAssignment(assignment *models.CoachAssignment) error
	ListMessages(userID uint) ([]models.CoachMessage, error)
	AppendUserMessage(message *models.CoachMessage) (bool, error)
	CreateMessage(message *models.CoachMessage) error
}

type CoachConversation struct {
	Assignment models.CoachAssignment `json:"assignment"`
	Messages   []models.CoachMessage  `json:"messages"`
	Remaining  int                    `json:"remaining"`
}

type CoachService struct {
	coaching CoachRepository
}

func NewCoachService(coaching CoachRepository) *CoachService {
	return &CoachService{coaching: coaching}
}

func (service *CoachService) Conversation(user *models.User, now time.Time) (CoachConversation, error) {
	if err := RequireFeature(user, FeatureMoneyCoach, now); err != nil {
		return CoachConversation{}, err
	}
	assignment, err := service.assignment(user.ID)
	if err != nil {
		return CoachConversation{}, err
	}
	messages, err := service.coaching.ListMessages(user.ID)
	if err != nil {
		return CoachConversation{}, fmt.Errorf("%w: %v", ErrCoachLoadFailed, err)
	}
	return CoachConversation{
		Assignment: assignment,
		Messages:   messages,
		Remaining:  remainingCoachMessages(assignment),
	}, nil
}

// Send stores a member message and spends one unit of the allowance.
func (service *CoachService) Send(user *models.User, text string, now time.Time) (models.CoachMessage, error) {
	if err := RequireFeature(user, FeatureMoneyCoach, now); err != nil {
		return models.CoachMessage{}, err
	}
	body, err := normalizeCoachMessage(text)
	if err != nil {
		return models.CoachMessage{}, err
	}
	assignment, err := service.assignment(user.ID)
	if err != nil {
		return models.CoachMessage{}, err
	}
	if remainingCoachMessages(assignment) == 0 {
		return models.CoachMessage{}, ErrCoachLimitReached
	}

	message := models.CoachMessage{
		UserID:       user.ID,
		AssignmentID: assignment.ID,
		Message:      body,
		SenderType:   models.SenderUser,
		CreatedAt:    now.UTC(),
	}
	appended, err := service.coaching.AppendUserMessage(&message)
	if err != nil {
		return models.CoachMessage{}, fmt.Errorf("%w: %v", ErrCoachSaveFailed, err)
	}
	if !appended {
		return models.CoachMessage{}, ErrCoachLimitReached
	}
	return message, nil
}

// Assign attaches a coach to the user. A non-positive limit uses the default allowance.
func (service *CoachService) Assign(userID uint, coachName string, limit int) (models.CoachAssignment, error) {
	name := strings.TrimSpace(coachName)
	if name == "" || utf8.RuneCountInString(name) > maxCoachNameLength {
		return models.CoachAssignment{}, ErrCoachNameInvalid
	}
	if limit <= 0 {
		limit = models.DefaultCoachMessageLimit
	}

	assignment := models.CoachAssignment{UserID: userID, CoachName: name, MessageLimit: limit}
	if err := service.coaching.SaveAssignment(&assignment); err != nil {
		return models.CoachAssignment{}, fmt.Errorf("%w: %v", ErrCoachSaveFailed, err)
	}
	return service.assignment(userID)
}

// Reply stores a coach answer. Replies do not consume the member's allowance.
func (service *CoachService) Reply(userID uint, text string, now time.Time) (models.CoachMessage, error) {
	body, err := normalizeCoachMessage(text)
	if err != nil {
		return models.CoachMessage{}, err
	}
	assignment, err := service.assignment(userID)
	if err != nil {
		return models.CoachMessage{}, err
	}

	message := models.CoachMessage{
		UserID:       userID,
		AssignmentID: assignment.ID,
		Message:      body,
		SenderType:   models.SenderCoach,
		CreatedAt:    now.UTC(),
	}
	if err := service.coaching.CreateMessage(&message); err != nil {
		return models.CoachMessage{}, fmt.Errorf("%w: %v", ErrCoachSaveFailed, err)
	}
	return message, nil
}

func (service *CoachService) assignment(userID uint) (models.CoachAssignment, error) {
	assignment, found, err := service.coaching.FindAssignment(userID)
	if err != nil {
		return models.CoachAssignment{}, fmt.Errorf("%w: %v", ErrCoachLoadFailed, err)
	}
	if !found {
		return models.CoachAssignment{}, ErrCoachNotAssigned
	}
	return assignment, nil
}

func remainingCoachMessages(assignment models.CoachAssignment) int {
	limit := assignment.MessageLimit
	if limit <= 0 {
		limit = models.DefaultCoachMessageLimit
	}
	if assignment.MessageCount >= limit {
		return 0
	}
	return limit - assignment.MessageCount
}

func normalizeCoachMessage(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrCoachMessageRequired
	}
	if utf8.RuneCountInString(body) > maxCoachMessageLength {
		return "", ErrCoachMessageTooLong
	}
	return body, nil
}
