package db

import (
	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoachRepository struct {
	database *gorm.DB
}

func NewCoachRepository(database *gorm.DB) *CoachRepository {
	return &CoachRepository{database: database}
}

func (repo *CoachRepository) FindAssignment(userID uint) (models.CoachAssignment, bool, error) {
	assignment := models.CoachAssignment{}
	result := repo.database.Where("user_id = ?", userID).Limit(1).Find(&assignment)
	if result.Error != nil {
		return models.CoachAssignment{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CoachAssignment{}, false, nil
	}
	return assignment, true, nil
}

// SaveAssignment creates the user's assignment or replaces its coach and
// allowance, keeping the messages already counted.
func (repo *CoachRepository) SaveAssignment(assignment *models.CoachAssignment) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"coach_name", "message_limit", "updated_at"}),
	}).Create(assignment).Error
}

func (repo *CoachRepository) CreateMessage(message *models.CoachMessage) error {
	return repo.database.Create(message).Error
}

func (repo *CoachRepository) ListMessages(userID uint) ([]models.CoachMessage, error) {
	messages := make([]models.CoachMessage, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendUserMessage stores the message and consumes one unit of the
// assignment's allowance. It reports false when the allowance is spent.
func (repo *CoachRepository) AppendUserMessage(message *models.CoachMessage) (bool, error) {
	appended := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CoachAssignment{}).
			Where("id = ? AND message_count < message_limit", message.AssignmentID).
			Update("message_count", gorm.Expr("message_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		appended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return appended, nil
}

func (repo *CoachRepository) CreatePromptHistory(record *models.AIPromptHistory) error {
	return repo.database.Create(record).Error
}

func (repo *CoachRepository) ListPromptHistory(userID uint, limit int) ([]models.AIPromptHistory, error) {
	records := make([]models.AIPromptHistory, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
