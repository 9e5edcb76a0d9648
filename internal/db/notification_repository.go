package db

import (
	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	database *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{database: database}
}

func (repo *NotificationRepository) ListPreferences(userID uint) ([]models.NotificationPreference, error) {
	preferences := make([]models.NotificationPreference, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("time ASC, id ASC").Find(&preferences).Error; err != nil {
		return nil, err
	}
	return preferences, nil
}

func (repo *NotificationRepository) CountPreferences(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.NotificationPreference{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *NotificationRepository) FindPreferenceForUser(preferenceID uint, userID uint) (models.NotificationPreference, error) {
	preference := models.NotificationPreference{}
	if err := repo.database.Where("id = ? AND user_id = ?", preferenceID, userID).First(&preference).Error; err != nil {
		return models.NotificationPreference{}, err
	}
	return preference, nil
}

func (repo *NotificationRepository) CreatePreference(preference *models.NotificationPreference) error {
	return repo.database.Create(preference).Error
}

func (repo *NotificationRepository) SavePreference(preference *models.NotificationPreference) error {
	return repo.database.Save(preference).Error
}

func (repo *NotificationRepository) DeletePreference(preferenceID uint, userID uint) error {
	return repo.database.Where("id = ? AND user_id = ?", preferenceID, userID).Delete(&models.NotificationPreference{}).Error
}

// SaveSubscription registers an endpoint, moving it to this user when it was
// previously registered by someone else.
func (repo *NotificationRepository) SaveSubscription(subscription *models.PushSubscription) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "keys"}),
	}).Create(subscription).Error
}

func (repo *NotificationRepository) ListSubscriptions(userID uint) ([]models.PushSubscription, error) {
	subscriptions := make([]models.PushSubscription, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("id ASC").Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (repo *NotificationRepository) DeleteSubscription(userID uint, endpoint string) error {
	return repo.database.Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{}).Error
}
