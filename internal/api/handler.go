package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/mindful/internal/db"
	"github.com/terraincognita07/mindful/internal/i18n"
	"github.com/terraincognita07/mindful/internal/services"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = services.DefaultSessionTTL
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

// Config carries everything the HTTP layer needs beyond the database.
type Config struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	TrialDays    int
	Prompt       services.PromptConfig
	Now          func() time.Time
}

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	loginLimiter *attemptLimiter
	now          func() time.Time

	repositories        *db.Repositories
	authService         *services.AuthService
	badgeService        *services.BadgeService
	dayService          *services.DayService
	habitService        *services.HabitService
	statsService        *services.StatsService
	exportService       *services.ExportService
	settingsService     *services.SettingsService
	notificationService *services.NotificationService
	promptService       *services.PromptService
	coachService        *services.CoachService
}

func NewHandler(database *gorm.DB, i18nManager *i18n.Manager, cfg Config) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	handler := &Handler{
		secretKey:    []byte(cfg.SecretKey),
		location:     location,
		cookieSecure: cfg.CookieSecure,
		i18n:         i18nManager,
		loginLimiter: newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		now:          now,
	}
	return handler.withDependencies(database, cfg), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, cfg Config) *Handler {
	repos := db.NewRepositories(database)
	handler.repositories = repos
	handler.authService = services.NewAuthService(repos.Users, cfg.TrialDays)
	handler.badgeService = services.NewBadgeService(
		repos.Badges,
		repos.Entries,
		repos.Habits,
		repos.Exports,
		repos.Notifications,
		repos.Users,
		handler.location,
	)
	handler.dayService = services.NewDayService(repos.Entries, handler.badgeService, handler.location)
	handler.habitService = services.NewHabitService(repos.Habits, handler.badgeService, handler.location)
	handler.statsService = services.NewStatsService(repos.Entries, repos.Habits, repos.Badges, handler.location)
	handler.exportService = services.NewExportService(repos.Entries, repos.Badges, repos.Exports, handler.badgeService)
	handler.settingsService = services.NewSettingsService(repos.Users, repos.Badges, repos.Entries, repos.Habits)
	handler.notificationService = services.NewNotificationService(repos.Notifications, handler.badgeService)
	handler.promptService = services.NewPromptService(repos.Coaching, cfg.Prompt)
	handler.coachService = services.NewCoachService(repos.Coaching)
	return handler
}
