package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 60
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	usernameStrip = regexp.MustCompile(`[^a-z0-9_.\-]`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateUsername validates username format
// Rules: 3-60 characters, letters, numbers, underscores only
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at least 3 characters"}
	}

	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 60 characters"}
	}

	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"}
	}

	// Check if it starts with a letter or number (not underscore)
	if len(username) > 0 && !(unicode.IsLetter(rune(username[0])) || unicode.IsNumber(rune(username[0]))) {
		return &ValidationError{Field: "username", Message: "Username must start with a letter or number"}
	}

	return nil
}

// SanitizeUsername lowercases the input and strips every character that is
// not a letter, digit, underscore, dot, or dash. May return "".
func SanitizeUsername(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	s = usernameStrip.ReplaceAllString(s, "")
	if len(s) > MaxUsernameLength {
		s = s[:MaxUsernameLength]
	}
	return s
}

// NormalizeUsername converts username to lowercase for storage
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email address. Returns "" when the
// address is not plausibly valid — email is the identity key, so a record
// without a usable email cannot be matched or created.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return ""
	}
	return email
}

// EmailLocalPart returns the part of an email before the "@".
func EmailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}

// RandomNumericSuffix returns a random 3-digit string (100-999), used to
// de-collide derived usernames.
func RandomNumericSuffix() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "999"
	}
	return big.NewInt(100 + n.Int64()).String()
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
