package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres connects to PostgreSQL and initializes the schema.
func ConnectPostgres(postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = db.Ping(); err != nil {
		return nil, err
	}

	log.Println("✅ Connected to PostgreSQL")

	if err = InitPostgresTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(db *sql.DB) error {
	queries := []string{
		// Users table (local identity store)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			login VARCHAR(60) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			display_name VARCHAR(255),
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			role VARCHAR(50) NOT NULL DEFAULT 'subscriber',
			password_hash VARCHAR(255) NOT NULL
		)`,

		// Per-user flag store: legacy credential markers, sync provenance,
		// app-side profile fields. One row per (user, key).
		`CREATE TABLE IF NOT EXISTS user_meta (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			meta_key VARCHAR(255) NOT NULL,
			meta_value TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, meta_key)
		)`,

		// Courses table (LMS catalog; external_id pairs a course with its
		// app-side id for import enrollment mapping)
		`CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			external_id VARCHAR(255),
			published BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Enrollments table (one row per user/course pair)
		`CREATE TABLE IF NOT EXISTS enrollments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			source VARCHAR(50),
			UNIQUE(user_id, course_id)
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_users_login_lower ON users(LOWER(login))`,
		`CREATE INDEX IF NOT EXISTS idx_user_meta_user_id ON user_meta(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_meta_key ON user_meta(meta_key)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_external_id ON courses(external_id)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_published ON courses(published)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_user_id ON enrollments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_course_id ON enrollments(course_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}
