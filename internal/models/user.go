package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles assigned by the import and sync paths.
const (
	RoleSubscriber = "subscriber"
	RoleStudent    = "student"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Login       string `json:"login"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Role        string `json:"role"`

	PasswordHash string `json:"-"` // Never returned in JSON
}

// Name returns the display name, falling back to "first last" when the
// display name was never set.
func (u *User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SplitName breaks a full name into first and last parts (last part may be empty).
func SplitName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
