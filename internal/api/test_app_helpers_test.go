package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/db"
	"github.com/terraincognita07/mindful/internal/i18n"
	"github.com/terraincognita07/mindful/internal/models"
	"gorm.io/gorm"
)

const testPassword = "StrongPass1"

type testEnv struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
	repos    *db.Repositories
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "mindful-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager("en")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	env := &testEnv{
		database: database,
		repos:    db.NewRepositories(database),
		now:      time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
	}
	handler, err := NewHandler(database, i18nManager, Config{
		SecretKey: "test-secret-key-with-enough-entropy!!",
		Location:  time.UTC,
		Now:       func() time.Time { return env.now },
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	env.handler = handler
	env.app = NewApp(handler, AppOptions{})
	return env
}

func (env *testEnv) do(t *testing.T, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testEnv) register(t *testing.T, email string) (string, models.User) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": testPassword,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	session := sessionResponse{}
	decodeJSON(t, response.Body, &session)
	if session.Token == "" {
		t.Fatal("expected session token in register response")
	}
	return session.Token, session.User
}

func (env *testEnv) makePremium(t *testing.T, userID uint) {
	t.Helper()

	started := env.now.Add(-time.Hour)
	if err := env.repos.Users.UpdateSubscription(userID, models.TierPremium, &started, nil, nil); err != nil {
		t.Fatalf("upgrade user: %v", err)
	}
}

func assertStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, string(body))
	}
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
}

type apiErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func readAPIError(t *testing.T, body io.Reader) apiErrorPayload {
	t.Helper()
	payload := apiErrorPayload{}
	decodeJSON(t, body, &payload)
	return payload
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie != nil && cookie.Name == name {
			return cookie
		}
	}
	return nil
}
