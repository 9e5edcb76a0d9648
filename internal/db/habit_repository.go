package db

import (
	"time"

	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HabitRepository struct {
	database *gorm.DB
}

func NewHabitRepository(database *gorm.DB) *HabitRepository {
	return &HabitRepository{database: database}
}

func (repo *HabitRepository) ListGoals(userID uint) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (repo *HabitRepository) FindGoalForUser(goalID uint, userID uint) (models.Goal, error) {
	goal := models.Goal{}
	if err := repo.database.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (repo *HabitRepository) CreateGoal(goal *models.Goal) error {
	return repo.database.Create(goal).Error
}

func (repo *HabitRepository) SaveGoal(goal *models.Goal) error {
	return repo.database.Save(goal).Error
}

// DeleteGoal detaches the goal's habits before removing it.
func (repo *HabitRepository) DeleteGoal(goalID uint, userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Habit{}).
			Where("goal_id = ? AND user_id = ?", goalID, userID).
			Update("goal_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{}).Error
	})
}

func (repo *HabitRepository) ListHabits(userID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) CountHabits(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Habit{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *HabitRepository) FindHabitForUser(habitID uint, userID uint) (models.Habit, error) {
	habit := models.Habit{}
	if err := repo.database.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (repo *HabitRepository) CreateHabit(habit *models.Habit) error {
	return repo.database.Create(habit).Error
}

func (repo *HabitRepository) SaveHabit(habit *models.Habit) error {
	return repo.database.Save(habit).Error
}

func (repo *HabitRepository) DeleteHabit(habitID uint, userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ? AND user_id = ?", habitID, userID).Delete(&models.HabitCompletion{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", habitID, userID).Delete(&models.Habit{}).Error
	})
}

func (repo *HabitRepository) ListCompletions(userID uint) ([]models.HabitCompletion, error) {
	completions := make([]models.HabitCompletion, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("completed_date DESC, id DESC").Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

// InsertCompletion reports false when the habit was already completed that day.
func (repo *HabitRepository) InsertCompletion(completion *models.HabitCompletion) (bool, error) {
	result := repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "habit_id"}, {Name: "completed_date"}},
		DoNothing: true,
	}).Create(completion)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *HabitRepository) DeleteCompletion(userID uint, habitID uint, dayStart time.Time, dayEnd time.Time) error {
	return repo.database.
		Where("user_id = ? AND habit_id = ? AND completed_date >= ? AND completed_date < ?", userID, habitID, dayStart, dayEnd).
		Delete(&models.HabitCompletion{}).Error
}

func (repo *HabitRepository) DeleteCompletionsByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.HabitCompletion{}).Error
}

func (repo *HabitRepository) CountCompletionsByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.HabitCompletion{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
