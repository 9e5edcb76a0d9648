package db

import (
	"time"

	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyEntryRepository struct {
	database *gorm.DB
}

func NewDailyEntryRepository(database *gorm.DB) *DailyEntryRepository {
	return &DailyEntryRepository{database: database}
}

func (repo *DailyEntryRepository) ListByUser(userID uint) ([]models.DailyEntry, error) {
	entries := make([]models.DailyEntry, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("entry_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *DailyEntryRepository) ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyEntry, error) {
	query := repo.database.Model(&models.DailyEntry{}).Where("user_id = ?", userID)
	if fromStart != nil {
		query = query.Where("entry_date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("entry_date < ?", *toEnd)
	}

	entries := make([]models.DailyEntry, 0)
	if err := query.Order("entry_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *DailyEntryRepository) FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.DailyEntry, bool, error) {
	entry := models.DailyEntry{}
	result := repo.database.
		Where("user_id = ? AND entry_date >= ? AND entry_date < ?", userID, dayStart, dayEnd).
		Order("entry_date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyEntry{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyEntry{}, false, nil
	}
	return entry, true, nil
}

// Upsert writes the entry keyed on (user_id, entry_date). Concurrent writers
// resolve last-write-wins. The caller should re-read the row for its id.
func (repo *DailyEntryRepository) Upsert(entry *models.DailyEntry) error {
	row := *entry
	row.ID = 0
	return repo.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "entry_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"morning_completed",
			"morning_intention",
			"morning_completed_at",
			"quick_action_id",
			"quick_action_text",
			"tip_title",
			"action_completed",
			"evening_completed",
			"reflection_text",
			"rating",
			"evening_completed_at",
			"stars_earned",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (repo *DailyEntryRepository) DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) error {
	return repo.database.Where("user_id = ? AND entry_date >= ? AND entry_date < ?", userID, dayStart, dayEnd).Delete(&models.DailyEntry{}).Error
}

func (repo *DailyEntryRepository) CountByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.DailyEntry{}).
		Where("user_id = ? AND entry_date >= ? AND entry_date < ?", userID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *DailyEntryRepository) DeleteByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.DailyEntry{}).Error
}

func (repo *DailyEntryRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.DailyEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
