package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresURI string
	RedisURI    string
	MongoURI    string // Optional; audit trail is skipped when empty

	Port           string
	Environment    string // ENV: production, development, etc.
	AllowedOrigins []string

	// Shared secret used symmetrically for both sync directions. Must match
	// the WORDPRESS_API_KEY secret configured in the app.
	SyncAPIKey string

	// Base URL of the app backend for outbound sync calls.
	AppBaseURL string

	// Bound on the outbound sync request; the registration request blocks for
	// at most this long.
	SyncTimeout time.Duration

	// LMSEnabled selects the course capability at startup. When false the
	// importer skips every enrollment reference and grants no learner role.
	LMSEnabled bool
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	timeout := 15
	if v, err := strconv.Atoi(getEnv("SYNC_TIMEOUT_SECONDS", "15")); err == nil && v > 0 {
		timeout = v
	}

	return &Config{
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/bsa_bridge?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:       getEnv("MONGODB_URI", ""),
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		AllowedOrigins: allowedOrigins,
		SyncAPIKey:     getEnv("SYNC_API_KEY", getEnv("WORDPRESS_API_KEY", "")),
		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "https://appbarbaarintasan.com"), "/"),
		SyncTimeout:    time.Duration(timeout) * time.Second,
		LMSEnabled:     strings.ToLower(getEnv("LMS_ENABLED", "true")) != "false",
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
