package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type stubSettingsUserRepo struct {
	user                      models.User
	findErr                   error
	saveErr                   error
	saved                     *models.User
	updatePasswordCalled      bool
	updatedUserID             uint
	updatedPasswordHash       string
	updatedMustChangePassword bool
	subscriptionTier          string
	subscriptionEndsAt        *time.Time
	subscriptionTrialEndsAt   *time.Time
	deleteCalled              bool
	deleteErr                 error
}

func (stub *stubSettingsUserRepo) FindByID(uint) (models.User, error) {
	return stub.user, stub.findErr
}

func (stub *stubSettingsUserRepo) Save(user *models.User) error {
	if stub.saveErr != nil {
		return stub.saveErr
	}
	copied := *user
	stub.saved = &copied
	return nil
}

func (stub *stubSettingsUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	stub.updatePasswordCalled = true
	stub.updatedUserID = userID
	stub.updatedPasswordHash = passwordHash
	stub.updatedMustChangePassword = mustChangePassword
	return nil
}

func (stub *stubSettingsUserRepo) UpdateSubscription(_ uint, tier string, _ *time.Time, endsAt *time.Time, trialEndsAt *time.Time) error {
	stub.subscriptionTier = tier
	stub.subscriptionEndsAt = endsAt
	stub.subscriptionTrialEndsAt = trialEndsAt
	return nil
}

func (stub *stubSettingsUserRepo) DeleteAccountAndRelatedData(uint) error {
	stub.deleteCalled = true
	return stub.deleteErr
}

// stubSettingsRows models one user-owned table for the reset flows.
type stubSettingsRows struct {
	rows      int64
	deleteErr error
	ignore    bool
}

func (stub *stubSettingsRows) DeleteByUser(uint) error {
	if stub.deleteErr != nil {
		return stub.deleteErr
	}
	if !stub.ignore {
		stub.rows = 0
	}
	return nil
}

func (stub *stubSettingsRows) CountByUser(uint) (int64, error) {
	return stub.rows, nil
}

func (stub *stubSettingsRows) DeleteCompletionsByUser(userID uint) error {
	return stub.DeleteByUser(userID)
}

func (stub *stubSettingsRows) CountCompletionsByUser(userID uint) (int64, error) {
	return stub.CountByUser(userID)
}

type settingsFixture struct {
	users       *stubSettingsUserRepo
	badges      *stubSettingsRows
	entries     *stubSettingsRows
	completions *stubSettingsRows
	service     *SettingsService
}

func newSettingsFixture() *settingsFixture {
	fixture := &settingsFixture{
		users:       &stubSettingsUserRepo{},
		badges:      &stubSettingsRows{rows: 3},
		entries:     &stubSettingsRows{rows: 10},
		completions: &stubSettingsRows{rows: 4},
	}
	fixture.service = NewSettingsService(fixture.users, fixture.badges, fixture.entries, fixture.completions)
	return fixture
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func TestResetAllDataClearsEveryTable(t *testing.T) {
	fixture := newSettingsFixture()

	if err := fixture.service.ResetAllData(1); err != nil {
		t.Fatalf("ResetAllData() unexpected error: %v", err)
	}
	if fixture.badges.rows != 0 || fixture.entries.rows != 0 || fixture.completions.rows != 0 {
		t.Fatalf("expected every table cleared")
	}
}

func TestResetAllDataDetectsPolicyRejection(t *testing.T) {
	fixture := newSettingsFixture()
	fixture.entries.ignore = true

	err := fixture.service.ResetAllData(1)
	if !errors.Is(err, ErrDeletePolicyRejected) {
		t.Fatalf("expected ErrDeletePolicyRejected, got %v", err)
	}
	if errors.Is(err, ErrResetFailed) {
		t.Fatalf("policy rejection must stay distinct from a generic failure")
	}
}

func TestResetAllDataSurfacesDeleteFailure(t *testing.T) {
	fixture := newSettingsFixture()
	fixture.badges.deleteErr = errors.New("locked")

	if err := fixture.service.ResetAllData(1); !errors.Is(err, ErrResetFailed) {
		t.Fatalf("expected ErrResetFailed, got %v", err)
	}
	if fixture.entries.rows != 10 {
		t.Fatalf("expected entries untouched after badge delete failure")
	}
}

func TestResetBadgesKeepsEntries(t *testing.T) {
	fixture := newSettingsFixture()

	if err := fixture.service.ResetBadges(1); err != nil {
		t.Fatalf("ResetBadges() unexpected error: %v", err)
	}
	if fixture.badges.rows != 0 || fixture.entries.rows != 10 {
		t.Fatalf("expected only badges cleared, got badges=%d entries=%d", fixture.badges.rows, fixture.entries.rows)
	}

	fixture.badges.rows = 2
	fixture.badges.ignore = true
	if err := fixture.service.ResetBadges(1); !errors.Is(err, ErrDeletePolicyRejected) {
		t.Fatalf("expected ErrDeletePolicyRejected, got %v", err)
	}
}

func TestDeleteAccountChecksPassword(t *testing.T) {
	fixture := newSettingsFixture()
	user := &models.User{ID: 7, PasswordHash: mustHashPassword(t, "StrongPass1")}

	if err := fixture.service.DeleteAccount(user, "   "); !errors.Is(err, ErrSettingsPasswordMissing) {
		t.Fatalf("expected ErrSettingsPasswordMissing, got %v", err)
	}
	if err := fixture.service.DeleteAccount(user, "WrongPass1"); !errors.Is(err, ErrSettingsPasswordInvalid) {
		t.Fatalf("expected ErrSettingsPasswordInvalid, got %v", err)
	}
	if fixture.users.deleteCalled {
		t.Fatalf("expected no delete before the password matched")
	}
	if err := fixture.service.DeleteAccount(user, "  StrongPass1  "); err != nil {
		t.Fatalf("DeleteAccount() unexpected error: %v", err)
	}
	if !fixture.users.deleteCalled {
		t.Fatalf("expected account delete")
	}
}

func TestValidatePasswordChange(t *testing.T) {
	hash := mustHashPassword(t, "StrongPass1")

	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		wantErr error
	}{
		{name: "blank input", current: " ", next: "NewPass1", confirm: "NewPass1", wantErr: ErrSettingsPasswordChangeInvalidInput},
		{name: "mismatch", current: "StrongPass1", next: "NewPass1", confirm: "OtherPass1", wantErr: ErrSettingsPasswordMismatch},
		{name: "wrong current", current: "WrongPass1", next: "NewPass1", confirm: "NewPass1", wantErr: ErrSettingsInvalidCurrentPassword},
		{name: "unchanged", current: "StrongPass1", next: "StrongPass1", confirm: "StrongPass1", wantErr: ErrSettingsNewPasswordMustDiffer},
		{name: "weak", current: "StrongPass1", next: "12345678", confirm: "12345678", wantErr: ErrSettingsWeakPassword},
		{name: "valid", current: "StrongPass1", next: "EvenStronger2", confirm: "EvenStronger2"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := ValidatePasswordChange(hash, PasswordChange{Current: testCase.current, New: testCase.next, Confirm: testCase.confirm})
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestChangePasswordUpdatesHashedPassword(t *testing.T) {
	fixture := newSettingsFixture()
	user := &models.User{ID: 42, PasswordHash: mustHashPassword(t, "StrongPass1"), MustChangePassword: true}

	if err := fixture.service.ChangePassword(user, PasswordChange{Current: "StrongPass1", New: "EvenStronger2", Confirm: "EvenStronger2"}); err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}
	if !fixture.users.updatePasswordCalled || fixture.users.updatedUserID != 42 {
		t.Fatalf("expected UpdatePassword for user 42")
	}
	if fixture.users.updatedMustChangePassword || user.MustChangePassword {
		t.Fatal("expected mustChangePassword=false")
	}
	if bcrypt.CompareHashAndPassword([]byte(fixture.users.updatedPasswordHash), []byte("EvenStronger2")) != nil {
		t.Fatalf("expected stored hash to match new password")
	}
}

func TestUpdateProfileValidatesBeforeSaving(t *testing.T) {
	fixture := newSettingsFixture()
	fixture.users.user = models.User{ID: 1, DisplayName: "Old", NotificationMorning: "07:00"}

	badTime := "25:00"
	name := "New"
	if _, err := fixture.service.UpdateProfile(1, ProfileUpdate{DisplayName: &name, NotificationEvening: &badTime}); !errors.Is(err, ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime, got %v", err)
	}
	if fixture.users.saved != nil {
		t.Fatalf("expected nothing saved after validation failure")
	}

	morning := "6:30"
	timezone := "Europe/Berlin"
	goals := []string{" Save more ", "", "save more", "Pay off debt"}
	user, err := fixture.service.UpdateProfile(1, ProfileUpdate{
		DisplayName:         &name,
		Timezone:            &timezone,
		Goals:               &goals,
		NotificationMorning: &morning,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() unexpected error: %v", err)
	}
	if user.DisplayName != "New" || user.Timezone != "Europe/Berlin" || user.NotificationMorning != "06:30" {
		t.Fatalf("unexpected profile: %#v", user)
	}
	if len(user.Goals) != 2 || user.Goals[0] != "Save more" || user.Goals[1] != "Pay off debt" {
		t.Fatalf("unexpected goals: %#v", user.Goals)
	}
	if fixture.users.saved == nil {
		t.Fatalf("expected profile saved")
	}
}

func TestProfileFieldPolicies(t *testing.T) {
	if _, err := NormalizeDisplayName(strings.Repeat("a", 65)); !errors.Is(err, ErrSettingsDisplayNameTooLong) {
		t.Fatalf("expected ErrSettingsDisplayNameTooLong, got %v", err)
	}
	if _, err := NormalizeTimezone("Mars/Olympus"); !errors.Is(err, ErrSettingsInvalidTimezone) {
		t.Fatalf("expected ErrSettingsInvalidTimezone, got %v", err)
	}
	if value, err := NormalizeTimezone("  "); err != nil || value != "" {
		t.Fatalf("expected blank timezone accepted, got %q %v", value, err)
	}
	if _, err := NormalizeLanguage("de"); !errors.Is(err, ErrSettingsInvalidLanguage) {
		t.Fatalf("expected ErrSettingsInvalidLanguage, got %v", err)
	}
	for raw, want := range map[string]string{"07:00": "07:00", "7:05": "07:05", " 20:00 ": "20:00", "23:59": "23:59"} {
		got, err := NormalizeReminderTime(raw)
		if err != nil || got != want {
			t.Fatalf("NormalizeReminderTime(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	for _, raw := range []string{"", "24:00", "7pm", "12:60"} {
		if _, err := NormalizeReminderTime(raw); !errors.Is(err, ErrInvalidReminderTime) {
			t.Fatalf("expected ErrInvalidReminderTime for %q, got %v", raw, err)
		}
	}
}

func TestChangeTier(t *testing.T) {
	fixture := newSettingsFixture()
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	if err := fixture.service.ChangeTier(1, "gold", 0, 0, now); !errors.Is(err, ErrInvalidSubscriptionTier) {
		t.Fatalf("expected ErrInvalidSubscriptionTier, got %v", err)
	}
	if err := fixture.service.ChangeTier(1, "Premium", 30*24*time.Hour, 7, now); err != nil {
		t.Fatalf("ChangeTier() unexpected error: %v", err)
	}
	if fixture.users.subscriptionTier != models.TierPremium {
		t.Fatalf("expected premium tier, got %q", fixture.users.subscriptionTier)
	}
	if fixture.users.subscriptionEndsAt == nil || !fixture.users.subscriptionEndsAt.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected subscription end: %v", fixture.users.subscriptionEndsAt)
	}
	if fixture.users.subscriptionTrialEndsAt == nil || !fixture.users.subscriptionTrialEndsAt.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected trial end: %v", fixture.users.subscriptionTrialEndsAt)
	}
}
