package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
	"github.com/barbaarintasan/bsa-bridge/internal/services"
	"github.com/barbaarintasan/bsa-bridge/pkg/utils"
)

// User Signup Request
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// User Signin Request
type SigninRequest struct {
	Login    string `json:"login"` // login handle or email
	Password string `json:"password"`
}

// Auth Response
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// Signup handles local user registration. A successful registration fires
// the outbound sync to the app; sync failure never fails the signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Name, email, and password are required", http.StatusBadRequest)
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		http.Error(w, "Invalid email address", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	existing, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "User with this email already exists", http.StatusConflict)
		return
	}

	login := utils.NormalizeUsername(req.Username)
	if login != "" {
		if err := utils.ValidateUsername(login); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		taken, err := h.Users.LoginExists(ctx, login)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "Username is already taken", http.StatusConflict)
			return
		}
	} else {
		login = utils.SanitizeUsername(email)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	first, last := models.SplitName(req.Name)
	user := &models.User{
		Login:        login,
		Email:        email,
		DisplayName:  req.Name,
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleSubscriber,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if req.Phone != "" {
		h.Users.SetMeta(ctx, user.ID, services.MetaPhoneNumber, req.Phone)
	}

	// Registration event: push to the app. Blocks for at most the configured
	// sync timeout and never affects the signup outcome.
	if h.Sync != nil {
		h.Sync.NotifyApp(ctx, user)
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

// Signin handles user login. The legacy-credential stage runs first: it
// either authenticates (upgrading the stored hash), rejects, or passes
// through to native verification.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	result, err := h.Legacy.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var user *models.User
	switch result.Outcome {
	case services.AuthAuthenticated:
		user = result.User

	case services.AuthRejected:
		// Same message as a native mismatch so a probe cannot tell whether a
		// legacy hash existed.
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return

	case services.AuthPassThrough:
		user, err = h.Users.GetByLogin(ctx, req.Login)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			user, err = h.Users.GetByEmail(ctx, req.Login)
			if err != nil {
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
		}
		if user == nil {
			http.Error(w, "Invalid login or password", http.StatusUnauthorized)
			return
		}

		valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
		if err != nil || !valid {
			http.Error(w, "Invalid login or password", http.StatusUnauthorized)
			return
		}
	}

	var token string
	if h.Sessions != nil {
		token, err = h.Sessions.Create(ctx, user.ID)
		if err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}
