package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/barbaarintasan/bsa-bridge/internal/config"
	"github.com/barbaarintasan/bsa-bridge/internal/middleware"
	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

const testAPIKey = "shared-secret"

func newSyncRouter(users *fakeUsers, apiKey string) *chi.Mux {
	h := &Handler{Cfg: &config.Config{SyncAPIKey: apiKey}, Users: users}
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAPIKey(apiKey))
		pr.Post("/bsa/v1/sync-user", h.SyncUserFromApp)
	})
	return r
}

func postSyncUser(t *testing.T, r http.Handler, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bsa/v1/sync-user", bytes.NewReader(raw))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSyncResponse(t *testing.T, w *httptest.ResponseRecorder) SyncUserResponse {
	t.Helper()
	var resp SyncUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSyncUser_RejectsBadOrMissingKey(t *testing.T) {
	t.Parallel()
	r := newSyncRouter(newFakeUsers(), testAPIKey)

	body := SyncUserRequest{Email: "cabdi@example.com", Name: "Cabdi"}

	w := postSyncUser(t, r, "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postSyncUser(t, r, "wrong-key", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncUser_RejectsWhenKeyUnconfigured(t *testing.T) {
	t.Parallel()
	r := newSyncRouter(newFakeUsers(), "")

	// Even a "matching" empty key must not pass.
	w := postSyncUser(t, r, "", SyncUserRequest{Email: "cabdi@example.com"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncUser_MissingEmail(t *testing.T) {
	t.Parallel()
	r := newSyncRouter(newFakeUsers(), testAPIKey)

	w := postSyncUser(t, r, testAPIKey, SyncUserRequest{Name: "No Email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeSyncResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "Email required", resp.Error)
}

func TestSyncUser_CreateThenAlreadyExists(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	r := newSyncRouter(users, testAPIKey)

	body := SyncUserRequest{
		Email:        "cabdi@example.com",
		Name:         "Cabdi Xasan",
		Phone:        "+25261",
		PasswordHash: "$2y$10$legacyhash",
	}

	w := postSyncUser(t, r, testAPIKey, body)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeSyncResponse(t, w)
	require.True(t, created.Success)
	require.Equal(t, "created", created.Action)
	require.Equal(t, "cabdixasan", created.Username)
	require.NotEmpty(t, created.WPUserID)

	u, _ := users.GetByEmail(context.Background(), "cabdi@example.com")
	require.NotNil(t, u)
	require.Equal(t, models.RoleSubscriber, u.Role)

	marker, _ := users.GetMeta(context.Background(), u.ID, "legacy_bcrypt")
	require.Equal(t, "$2y$10$legacyhash", marker)
	phone, _ := users.GetMeta(context.Background(), u.ID, "phone_number")
	require.Equal(t, "+25261", phone)
	fromApp, _ := users.GetMeta(context.Background(), u.ID, "bsa_synced_from_app")
	require.Equal(t, "1", fromApp, "loop-prevention marker must be set at creation")

	// Repeating the same request is idempotent.
	w = postSyncUser(t, r, testAPIKey, body)
	require.Equal(t, http.StatusOK, w.Code)
	again := decodeSyncResponse(t, w)
	require.True(t, again.Success)
	require.Equal(t, "already_exists", again.Action)
	require.Equal(t, created.WPUserID, again.WPUserID)
}

func TestSyncUser_UsernameFallsBackToEmailLocalPart(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	users.add(&models.User{Login: "cabdixasan", Email: "other@example.com"})
	r := newSyncRouter(users, testAPIKey)

	w := postSyncUser(t, r, testAPIKey, SyncUserRequest{Email: "cabdi@example.com", Name: "Cabdi Xasan"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeSyncResponse(t, w)
	require.Equal(t, "cabdi", resp.Username)
}

func TestSyncUser_UsernameCollisionGetsNumericSuffix(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	users.add(&models.User{Login: "cabdixasan", Email: "a@example.com"})
	users.add(&models.User{Login: "cabdi", Email: "b@example.com"})
	r := newSyncRouter(users, testAPIKey)

	w := postSyncUser(t, r, testAPIKey, SyncUserRequest{Email: "cabdi@example.com", Name: "Cabdi Xasan"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeSyncResponse(t, w)
	require.Regexp(t, regexp.MustCompile(`^cabdi_\d{3}$`), resp.Username)
}

func TestSyncUser_CreateFailureReturns500(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	users.createErr = errDatabaseDown
	r := newSyncRouter(users, testAPIKey)

	w := postSyncUser(t, r, testAPIKey, SyncUserRequest{Email: "cabdi@example.com", Name: "Cabdi"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeSyncResponse(t, w)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "database down")
}
