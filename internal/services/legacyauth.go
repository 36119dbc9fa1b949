package services

import (
	"context"
	"log"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
	"github.com/barbaarintasan/bsa-bridge/pkg/utils"
)

// AuthOutcome is the result of the legacy-credential pipeline stage.
type AuthOutcome int

const (
	// AuthPassThrough means the stage has nothing to say; continue with
	// native verification.
	AuthPassThrough AuthOutcome = iota
	// AuthAuthenticated means the legacy hash matched and the credential was
	// upgraded; the login succeeds with the attached user.
	AuthAuthenticated
	// AuthRejected means a legacy hash existed and the password was wrong.
	// Native fallback must NOT run, so a failed legacy attempt is
	// indistinguishable from an ordinary bad password.
	AuthRejected
)

type AuthResult struct {
	Outcome AuthOutcome
	User    *models.User
}

// LegacyAuthenticator intercepts login attempts for users still carrying a
// legacy bcrypt hash from the app backend. On the first correct login it
// rewrites the credential in the native format and deletes the marker —
// a one-shot, irreversible upgrade.
type LegacyAuthenticator struct {
	users UserStore
}

func NewLegacyAuthenticator(users UserStore) *LegacyAuthenticator {
	return &LegacyAuthenticator{users: users}
}

// Authenticate runs the legacy stage for a login attempt. login may be a
// login handle or an email address.
func (a *LegacyAuthenticator) Authenticate(ctx context.Context, login, password string) (AuthResult, error) {
	if login == "" || password == "" {
		return AuthResult{Outcome: AuthPassThrough}, nil
	}

	user, err := a.users.GetByLogin(ctx, login)
	if err != nil {
		return AuthResult{}, err
	}
	if user == nil {
		user, err = a.users.GetByEmail(ctx, login)
		if err != nil {
			return AuthResult{}, err
		}
	}
	if user == nil {
		return AuthResult{Outcome: AuthPassThrough}, nil
	}

	legacyHash, err := a.users.GetMeta(ctx, user.ID, MetaLegacyBcrypt)
	if err != nil {
		return AuthResult{}, err
	}
	if legacyHash == "" {
		return AuthResult{Outcome: AuthPassThrough}, nil
	}

	if utils.CheckLegacyPassword(password, legacyHash) {
		nativeHash, err := utils.HashPassword(password)
		if err != nil {
			return AuthResult{}, err
		}
		if err := a.users.SetPasswordHash(ctx, user.ID, nativeHash); err != nil {
			return AuthResult{}, err
		}
		if err := a.users.DeleteMeta(ctx, user.ID, MetaLegacyBcrypt); err != nil {
			// The native hash is already in place, so the account stays
			// usable; the stale marker would only be retried next login.
			log.Printf("[Legacy Auth] failed to delete legacy marker for %s: %v", user.Email, err)
		}
		user.PasswordHash = nativeHash
		return AuthResult{Outcome: AuthAuthenticated, User: user}, nil
	}

	return AuthResult{Outcome: AuthRejected}, nil
}
