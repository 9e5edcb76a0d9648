package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	StarsForIntention  = 2
	StarsForAction     = 1
	StarsForReflection = 1
)

var (
	ErrDayEntryLoadFailed     = errors.New("load day entry failed")
	ErrDayEntrySaveFailed     = errors.New("save day entry failed")
	ErrDeleteDayFailed        = errors.New("delete day failed")
	ErrDeletePolicyRejected   = errors.New("delete rejected by storage policy")
	ErrUnknownQuickAction     = errors.New("unknown quick action")
	ErrActionAlreadyCommitted = errors.New("another action is already committed today")
	ErrNoActionCommitted      = errors.New("no action committed today")
	ErrActionOutcomeRecorded  = errors.New("action outcome already recorded")
)

type DayEntryRepository interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyEntry, error)
	FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.DailyEntry, bool, error)
	Upsert(entry *models.DailyEntry) error
	DeleteByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) error
	CountByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (int64, error)
}

type DayBadgeEvaluator interface {
	Evaluate(userID uint, now time.Time) []models.Badge
}

type DayActionResult struct {
	Entry     models.DailyEntry `json:"entry"`
	NewBadges []models.Badge    `json:"new_badges"`
}

type DayService struct {
	entries  DayEntryRepository
	badges   DayBadgeEvaluator
	location *time.Location
}

func NewDayService(entries DayEntryRepository, badges DayBadgeEvaluator, location *time.Location) *DayService {
	if location == nil {
		location = time.UTC
	}
	return &DayService{
		entries:  entries,
		badges:   badges,
		location: location,
	}
}

// Today resolves the user's current calendar day in their profile timezone.
func (service *DayService) Today(user *models.User, now time.Time) time.Time {
	return CalendarDate(now, UserLocation(user, service.location))
}

func (service *DayService) EntryForDate(user *models.User, day time.Time) (models.DailyEntry, error) {
	dayStart, dayEnd := CalendarDayRange(day)
	entry, found, err := service.entries.FindByUserAndDayRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return models.DailyEntry{}, ErrDayEntryLoadFailed
	}
	if !found {
		return models.DailyEntry{UserID: user.ID, EntryDate: dayStart}, nil
	}
	return entry, nil
}

// ListEntries returns entries between from and to inclusive; nil bounds are open.
func (service *DayService) ListEntries(user *models.User, from *time.Time, to *time.Time) ([]models.DailyEntry, error) {
	var fromStart *time.Time
	var toEnd *time.Time
	if from != nil {
		start, _ := CalendarDayRange(*from)
		fromStart = &start
	}
	if to != nil {
		_, end := CalendarDayRange(*to)
		toEnd = &end
	}
	entries, err := service.entries.ListByUserRange(user.ID, fromStart, toEnd)
	if err != nil {
		return nil, ErrDayEntryLoadFailed
	}
	return entries, nil
}

func (service *DayService) SetIntention(user *models.User, text string, now time.Time) (DayActionResult, error) {
	intention, err := NormalizeDayText(text)
	if err != nil {
		return DayActionResult{}, err
	}
	return service.mutateToday(user, now, func(entry *models.DailyEntry) error {
		if !entry.MorningCompleted {
			completedAt := now.UTC()
			entry.MorningCompleted = true
			entry.MorningCompletedAt = &completedAt
			entry.StarsEarned += StarsForIntention
		}
		entry.MorningIntention = intention
		return nil
	})
}

func (service *DayService) CommitAction(user *models.User, quickActionID uint, now time.Time) (DayActionResult, error) {
	tip, action, ok := FindQuickAction(quickActionID)
	if !ok {
		return DayActionResult{}, ErrUnknownQuickAction
	}
	return service.mutateToday(user, now, func(entry *models.DailyEntry) error {
		if entry.QuickActionID != nil {
			if *entry.QuickActionID == quickActionID {
				return nil
			}
			return ErrActionAlreadyCommitted
		}
		id := action.ID
		entry.QuickActionID = &id
		entry.QuickActionText = action.Text
		entry.TipTitle = tip.Title
		return nil
	})
}

func (service *DayService) RecordActionOutcome(user *models.User, succeeded bool, now time.Time) (DayActionResult, error) {
	outcome := models.ActionFailed
	if succeeded {
		outcome = models.ActionSucceeded
	}
	return service.mutateToday(user, now, func(entry *models.DailyEntry) error {
		if entry.QuickActionID == nil {
			return ErrNoActionCommitted
		}
		switch entry.ActionCompleted {
		case outcome:
			return nil
		case models.ActionUncommitted:
		default:
			return ErrActionOutcomeRecorded
		}
		entry.ActionCompleted = outcome
		if outcome == models.ActionSucceeded {
			entry.StarsEarned += StarsForAction
		}
		return nil
	})
}

func (service *DayService) CompleteReflection(user *models.User, text string, rating int, now time.Time) (DayActionResult, error) {
	reflection, err := NormalizeDayText(text)
	if err != nil {
		return DayActionResult{}, err
	}
	if !IsValidRating(rating) {
		return DayActionResult{}, ErrInvalidRating
	}
	return service.mutateToday(user, now, func(entry *models.DailyEntry) error {
		if !entry.EveningCompleted {
			completedAt := now.UTC()
			entry.EveningCompleted = true
			entry.EveningCompletedAt = &completedAt
			entry.StarsEarned += StarsForReflection
		}
		value := rating
		entry.ReflectionText = reflection
		entry.Rating = &value
		return nil
	})
}

// ResetToday deletes today's entry. Earned badges are kept.
func (service *DayService) ResetToday(user *models.User, now time.Time) error {
	dayStart, dayEnd := CalendarDayRange(service.Today(user, now))
	if err := service.entries.DeleteByUserAndDayRange(user.ID, dayStart, dayEnd); err != nil {
		return ErrDeleteDayFailed
	}

	remaining, err := service.entries.CountByUserAndDayRange(user.ID, dayStart, dayEnd)
	if err != nil {
		return ErrDeleteDayFailed
	}
	if remaining > 0 {
		logger.Warn("reset today left rows behind", "user_id", user.ID, "remaining", remaining)
		return ErrDeletePolicyRejected
	}
	return nil
}

// mutateToday loads today's entry (or a blank one), applies mutate, upserts it
// and re-reads the stored row before running a badge pass.
func (service *DayService) mutateToday(user *models.User, now time.Time, mutate func(entry *models.DailyEntry) error) (DayActionResult, error) {
	day := service.Today(user, now)
	entry, err := service.EntryForDate(user, day)
	if err != nil {
		return DayActionResult{}, err
	}
	if err := mutate(&entry); err != nil {
		return DayActionResult{}, err
	}
	if err := service.entries.Upsert(&entry); err != nil {
		logger.Error("save day entry failed", "user_id", user.ID, "date", FormatCalendarDate(day), "err", err)
		return DayActionResult{}, ErrDayEntrySaveFailed
	}

	stored, err := service.EntryForDate(user, day)
	if err != nil {
		return DayActionResult{}, err
	}

	newBadges := []models.Badge{}
	if service.badges != nil {
		newBadges = service.badges.Evaluate(user.ID, now)
	}
	return DayActionResult{Entry: stored, NewBadges: newBadges}, nil
}
