package db

import (
	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	database *gorm.DB
}

func NewBadgeRepository(database *gorm.DB) *BadgeRepository {
	return &BadgeRepository{database: database}
}

// EnsureCatalog inserts catalog badges missing by name and returns how many were added.
func (repo *BadgeRepository) EnsureCatalog(catalog []models.Badge) (int, error) {
	if len(catalog) == 0 {
		return 0, nil
	}

	rows := make([]models.Badge, len(catalog))
	copy(rows, catalog)
	result := repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (repo *BadgeRepository) ListCatalog() ([]models.Badge, error) {
	badges := make([]models.Badge, 0)
	if err := repo.database.Order("requirement_value ASC, id ASC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (repo *BadgeRepository) ListEarnedBadgeIDs(userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := repo.database.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertIfAbsent awards a badge. It reports false when the user already held it.
func (repo *BadgeRepository) InsertIfAbsent(award *models.UserBadge) (bool, error) {
	result := repo.database.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *BadgeRepository) ListUserBadges(userID uint) ([]models.UserBadge, error) {
	awards := make([]models.UserBadge, 0)
	if err := repo.database.
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

func (repo *BadgeRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.UserBadge{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *BadgeRepository) DeleteByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.UserBadge{}).Error
}
