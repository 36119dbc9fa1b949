package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
	"github.com/barbaarintasan/bsa-bridge/internal/services"
	"github.com/barbaarintasan/bsa-bridge/pkg/utils"
)

// Inbound sync request from the app
type SyncUserRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

type SyncUserResponse struct {
	Success  bool   `json:"success"`
	Action   string `json:"action,omitempty"` // "created" or "already_exists"
	WPUserID string `json:"wp_user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SyncUserFromApp handles POST /bsa/v1/sync-user: the app notifies us that a
// user registered over there. API-key auth happens in middleware. Repeating
// the same request is idempotent — an existing email is a success, not a
// conflict.
func (h *Handler) SyncUserFromApp(w http.ResponseWriter, r *http.Request) {
	var req SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SyncUserResponse{Success: false, Error: "Invalid request body"})
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		writeJSON(w, http.StatusBadRequest, SyncUserResponse{Success: false, Error: "Email required"})
		return
	}

	ctx := r.Context()
	existing, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, SyncUserResponse{Success: false, Error: err.Error()})
		return
	}
	if existing != nil {
		h.Audit.RecordSyncEvent(services.SyncEvent{
			Direction: services.SyncInbound, Email: email, Action: "already_exists",
		})
		writeJSON(w, http.StatusOK, SyncUserResponse{
			Success:  true,
			Action:   "already_exists",
			WPUserID: existing.ID.String(),
		})
		return
	}

	username, err := h.deriveUsername(r, req.Name, email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, SyncUserResponse{Success: false, Error: err.Error()})
		return
	}

	tempPassword, err := utils.GenerateRandomPassword(24)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, SyncUserResponse{Success: false, Error: err.Error()})
		return
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, SyncUserResponse{Success: false, Error: err.Error()})
		return
	}

	first, last := models.SplitName(req.Name)
	user := &models.User{
		Login:        username,
		Email:        email,
		DisplayName:  req.Name,
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleSubscriber,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		writeJSON(w, http.StatusInternalServerError, SyncUserResponse{Success: false, Error: err.Error()})
		return
	}

	if req.PasswordHash != "" {
		h.Users.SetMeta(ctx, user.ID, services.MetaLegacyBcrypt, req.PasswordHash)
	}
	if req.Phone != "" {
		h.Users.SetMeta(ctx, user.ID, services.MetaPhoneNumber, req.Phone)
	}

	// Loop prevention: this account came from the app, so outbound sync must
	// never echo it back.
	h.Users.SetMeta(ctx, user.ID, services.MetaSyncedFromApp, "1")
	h.Users.SetMeta(ctx, user.ID, services.MetaSyncDate, time.Now().UTC().Format(time.RFC3339))

	h.Audit.RecordSyncEvent(services.SyncEvent{
		Direction: services.SyncInbound, Email: email, Action: "created",
	})

	writeJSON(w, http.StatusCreated, SyncUserResponse{
		Success:  true,
		Action:   "created",
		WPUserID: user.ID.String(),
		Username: username,
	})
}

// deriveUsername picks a login handle for a synced user: the name with
// whitespace stripped and lowercased, then the email local-part, then a
// random numeric suffix if both are taken.
func (h *Handler) deriveUsername(r *http.Request, name, email string) (string, error) {
	ctx := r.Context()

	username := utils.SanitizeUsername(name)
	if username != "" {
		taken, err := h.Users.LoginExists(ctx, username)
		if err != nil {
			return "", err
		}
		if !taken {
			return username, nil
		}
	}

	username = utils.SanitizeUsername(utils.EmailLocalPart(email))
	taken, err := h.Users.LoginExists(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		username = username + "_" + utils.RandomNumericSuffix()
	}
	return username, nil
}
