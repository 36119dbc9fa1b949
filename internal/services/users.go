package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

// Meta keys shared between the importer, the credential verifier, and the
// sync gateway. Names match the app-side export contract.
const (
	// MetaLegacyBcrypt holds a legacy bcrypt hash pending one-time upgrade.
	// Present if and only if the user has not completed first login since
	// migration; deleted atomically with a successful upgrade.
	MetaLegacyBcrypt = "legacy_bcrypt"

	MetaAppID   = "bsa_app_id"
	MetaPhone   = "bsa_phone"
	MetaCountry = "bsa_country"
	MetaCity    = "bsa_city"

	// MetaPhoneNumber is the profile phone set by the sync gateway.
	MetaPhoneNumber = "phone_number"

	// MetaSyncedFromApp is the loop-prevention guard: set at most once at
	// creation, and its presence permanently suppresses outbound sync.
	MetaSyncedFromApp = "bsa_synced_from_app"
	MetaSyncDate      = "bsa_sync_date"

	MetaSyncedToApp    = "bsa_synced_to_app"
	MetaSyncToAppDate  = "bsa_sync_to_app_date"
	MetaSyncToAppError = "bsa_sync_error"
	MetaSyncToAppFail  = "bsa_sync_to_app_failed"

	// MetaLearnerRole records the elevated LMS role granted on import.
	MetaLearnerRole = "learner_role"

	// MetaEnrolledCourses is a JSON array of course ids the user is enrolled
	// in, kept alongside the enrollment records.
	MetaEnrolledCourses = "enrolled_course_ids"
)

// UserStore is the identity store contract shared by all three migration
// paths. Lookups return (nil, nil) when no user matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, u *models.User) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	GetMeta(ctx context.Context, id uuid.UUID, key string) (string, error)
	SetMeta(ctx context.Context, id uuid.UUID, key, value string) error
	DeleteMeta(ctx context.Context, id uuid.UUID, key string) error
}

// PostgresUsers implements UserStore over the users and user_meta tables.
type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

const userColumns = `id, created_at, login, email, display_name, first_name, last_name, role, password_hash`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var displayName, firstName, lastName sql.NullString
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Login, &u.Email, &displayName, &firstName, &lastName, &u.Role, &u.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.DisplayName = displayName.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	return &u, nil
}

func (s *PostgresUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

func (s *PostgresUsers) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(login) = LOWER($1)
	`, login)
	return scanUser(row)
}

func (s *PostgresUsers) LoginExists(ctx context.Context, login string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM users WHERE LOWER(login) = LOWER($1)
	`, login).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create inserts a new user. The ID and CreatedAt fields are filled in on the
// passed struct. A unique-constraint hit on login or email is reported as a
// plain error so callers can count it per record.
func (s *PostgresUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = models.RoleSubscriber
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, login, email, display_name, first_name, last_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.CreatedAt, u.Login, u.Email, u.DisplayName, u.FirstName, u.LastName, u.Role, u.PasswordHash)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("a user with this login or email already exists")
		}
		return err
	}
	return nil
}

func (s *PostgresUsers) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (s *PostgresUsers) GetMeta(ctx context.Context, id uuid.UUID, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT meta_value FROM user_meta WHERE user_id = $1 AND meta_key = $2
	`, id, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value.String, nil
}

func (s *PostgresUsers) SetMeta(ctx context.Context, id uuid.UUID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_meta (user_id, meta_key, meta_value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = NOW()
	`, id, key, value)
	return err
}

func (s *PostgresUsers) DeleteMeta(ctx context.Context, id uuid.UUID, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_meta WHERE user_id = $1 AND meta_key = $2
	`, id, key)
	return err
}
