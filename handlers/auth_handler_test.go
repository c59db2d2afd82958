package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rucja-api/config"
	"rucja-api/handlers"
	"rucja-api/middleware"
	"rucja-api/models"
	"rucja-api/store"
	"rucja-api/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv: "development",
		Auth: config.AuthConfig{
			AccessTokenSecret: []byte("test-secret"),
			AccessTokenTTL:    3 * time.Hour,
		},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "db.json"), logrus.New())
	assert.NoError(t, err)
	return s
}

func executeRequest(handler middleware.AppHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.ErrorHandler(handler).ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
}

func TestRegisterHandler(t *testing.T) {
	s := newTestStore(t)
	handler := handlers.NewAuthHandler(testConfig(), s)

	req := postJSON(t, "/register", map[string]string{"username": "doc1", "password": "pw", "email": "d@x.com"})
	rec := executeRequest(handler.RegisterHandler, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "doc1", created.Username)
	// The stored bcrypt hash comes back in the response, never the
	// plain password.
	assert.True(t, strings.HasPrefix(created.Password, "$2"), "expected a bcrypt hash, got %q", created.Password)
	assert.NotEqual(t, "pw", created.Password)
	assert.NotZero(t, created.CreatedAt)
}

func TestRegisterHandlerSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	handler := handlers.NewAuthHandler(testConfig(), s)

	rec := executeRequest(handler.RegisterHandler, postJSON(t, "/register", map[string]string{"username": "a", "password": "p", "email": "a@x.com"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = executeRequest(handler.RegisterHandler, postJSON(t, "/register", map[string]string{"username": "b", "password": "p", "email": "b@x.com"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var second models.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, 2, second.ID)
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	s := newTestStore(t)
	handler := handlers.NewAuthHandler(testConfig(), s)

	payloads := []map[string]string{
		{"password": "p", "email": "e@x.com"},
		{"username": "u", "email": "e@x.com"},
		{"username": "u", "password": "p"},
	}
	for _, payload := range payloads {
		rec := executeRequest(handler.RegisterHandler, postJSON(t, "/register", payload))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "requires username, password & email")
	}

	// Nothing was persisted.
	users, err := s.List("users")
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegisterHandlerInvalidJSON(t *testing.T) {
	handler := handlers.NewAuthHandler(testConfig(), newTestStore(t))

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{invalid-json"))
	rec := executeRequest(handler.RegisterHandler, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	cfg := testConfig()
	s := newTestStore(t)
	handler := handlers.NewAuthHandler(cfg, s)

	rec := executeRequest(handler.RegisterHandler, postJSON(t, "/register", map[string]string{"username": "doc1", "password": "pw", "email": "d@x.com"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = executeRequest(handler.LoginHandler, postJSON(t, "/login", map[string]string{"username": "doc1", "password": "pw"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.User.ID)
	assert.True(t, strings.HasPrefix(response.User.Password, "$2"))

	claims, err := utils.ParseAccessToken(response.AccessToken, cfg.Auth.AccessTokenSecret)
	assert.NoError(t, err)
	assert.Equal(t, "doc1", claims.User.Username)
}

func TestLoginHandlerUnknownUser(t *testing.T) {
	handler := handlers.NewAuthHandler(testConfig(), newTestStore(t))

	rec := executeRequest(handler.LoginHandler, postJSON(t, "/login", map[string]string{"username": "ghost", "password": "pw"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot find user: ghost")
}

// A wrong password answers 200 with a plain-text message. Long-standing
// wire behavior that clients rely on; see DESIGN.md.
func TestLoginHandlerPasswordMismatch(t *testing.T) {
	s := newTestStore(t)
	handler := handlers.NewAuthHandler(testConfig(), s)

	rec := executeRequest(handler.RegisterHandler, postJSON(t, "/register", map[string]string{"username": "doc1", "password": "pw", "email": "d@x.com"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = executeRequest(handler.LoginHandler, postJSON(t, "/login", map[string]string{"username": "doc1", "password": "wrong"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Not allowed, name/password mismatch.", rec.Body.String())
}

func TestLoginHandlerMissingFields(t *testing.T) {
	handler := handlers.NewAuthHandler(testConfig(), newTestStore(t))

	rec := executeRequest(handler.LoginHandler, postJSON(t, "/login", map[string]string{"username": "doc1"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "requires username & password both")
}
