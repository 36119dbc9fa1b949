package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// Sessions manages login sessions in Redis. One active session per user;
// signing in again resets the 7-day timer.
type Sessions struct {
	rdb *redis.Client
}

func NewSessions(rdb *redis.Client) *Sessions {
	return &Sessions{rdb: rdb}
}

// Create creates a new session for a user, invalidating any existing one.
// Returns the session token.
func (s *Sessions) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	s.InvalidateUserSessions(ctx, userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID.String()

	if err := s.rdb.Set(ctx, sessionKey, userID.String(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// Validate checks if a session token is valid and returns the user ID.
func (s *Sessions) Validate(ctx context.Context, sessionToken string) (uuid.UUID, bool, error) {
	if sessionToken == "" {
		return uuid.Nil, false, nil
	}

	userIDStr, err := s.rdb.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err != nil {
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

// InvalidateUserSessions removes the user's current session, if any.
func (s *Sessions) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) {
	userSessionKey := UserSessionKeyPrefix + userID.String()
	token, err := s.rdb.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		s.rdb.Del(ctx, SessionKeyPrefix+token)
	}
	s.rdb.Del(ctx, userSessionKey)
}

// Invalidate removes a single session from Redis.
func (s *Sessions) Invalidate(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	userIDStr, err := s.rdb.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err == nil {
		if userID, perr := uuid.Parse(userIDStr); perr == nil {
			s.rdb.Del(ctx, UserSessionKeyPrefix+userID.String())
		}
	}
	return s.rdb.Del(ctx, SessionKeyPrefix+sessionToken).Err()
}
