package db

import (
	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
)

type ExportRepository struct {
	database *gorm.DB
}

func NewExportRepository(database *gorm.DB) *ExportRepository {
	return &ExportRepository{database: database}
}

func (repo *ExportRepository) Create(record *models.DataExport) error {
	return repo.database.Create(record).Error
}

func (repo *ExportRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.DataExport{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ExportRepository) ListRecentByUser(userID uint, limit int) ([]models.DataExport, error) {
	records := make([]models.DataExport, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
