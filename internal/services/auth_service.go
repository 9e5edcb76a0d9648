package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthEmailExists    = errors.New("email already registered")
	ErrAuthRegisterFailed = errors.New("register failed")
	ErrAuthLookupFailed   = errors.New("auth lookup failed")
	ErrSessionUserMissing = errors.New("session user missing")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
}

// AuthService owns registration, credential checks and session resolution.
type AuthService struct {
	users     AuthUserRepository
	trialDays int
}

// NewAuthService builds the service. A positive trialDays grants every new
// account a premium trial of that length.
func NewAuthService(users AuthUserRepository, trialDays int) *AuthService {
	if trialDays < 0 {
		trialDays = 0
	}
	return &AuthService{users: users, trialDays: trialDays}
}

func (service *AuthService) Register(emailRaw string, passwordRaw string, displayName string, now time.Time) (models.User, error) {
	credentials, err := NormalizeCredentials(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(credentials.Password); err != nil {
		return models.User{}, err
	}
	name, err := NormalizeDisplayName(displayName)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(credentials.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthLookupFailed, err)
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthRegisterFailed, err)
	}

	if now.IsZero() {
		now = time.Now()
	}
	user := models.User{
		Email:               credentials.Email,
		PasswordHash:        string(hash),
		DisplayName:         name,
		Role:                models.RoleMember,
		Language:            DefaultLanguage,
		Goals:               []string{},
		NotificationMorning: models.DefaultMorningReminder,
		NotificationEvening: models.DefaultEveningReminder,
		SubscriptionTier:    models.TierFree,
		CreatedAt:           now.UTC(),
	}
	if service.trialDays > 0 {
		trialEnds := now.UTC().AddDate(0, 0, service.trialDays)
		user.TrialEndsAt = &trialEnds
	}

	if err := service.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthRegisterFailed, err)
	}
	return user, nil
}

// Login returns ErrAuthCredentialsInvalid for unknown emails and wrong
// passwords alike.
func (service *AuthService) Login(emailRaw string, passwordRaw string) (models.User, error) {
	credentials, err := NormalizeCredentials(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(credentials.Email)
	if err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// UserForSession loads the account behind verified claims and rejects tokens
// minted before the last password change.
func (service *AuthService) UserForSession(claims *SessionClaims) (models.User, error) {
	if claims == nil || claims.UserID == 0 {
		return models.User{}, ErrSessionTokenInvalid
	}
	user, err := service.users.FindByID(claims.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrSessionUserMissing, err)
	}
	if strings.TrimSpace(claims.PasswordState) != "" && !IsPasswordStateFingerprintMatch(claims.PasswordState, user.PasswordHash) {
		return models.User{}, ErrSessionTokenRevoked
	}
	return user, nil
}
