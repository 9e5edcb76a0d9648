package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	Entries       *DailyEntryRepository
	Habits        *HabitRepository
	Badges        *BadgeRepository
	Exports       *ExportRepository
	Notifications *NotificationRepository
	Coaching      *CoachRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Entries:       NewDailyEntryRepository(database),
		Habits:        NewHabitRepository(database),
		Badges:        NewBadgeRepository(database),
		Exports:       NewExportRepository(database),
		Notifications: NewNotificationRepository(database),
		Coaching:      NewCoachRepository(database),
	}
}
