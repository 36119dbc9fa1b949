package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	require.NotNil(t, c, "Load must not return nil")
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "https://appbarbaarintasan.com", c.AppBaseURL)
	require.Equal(t, 15*time.Second, c.SyncTimeout)
	require.True(t, c.LMSEnabled)
	require.False(t, c.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("SYNC_API_KEY", "secret-1")
	t.Setenv("APP_BASE_URL", "https://app.example.com/")
	t.Setenv("SYNC_TIMEOUT_SECONDS", "30")
	t.Setenv("LMS_ENABLED", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c := Load()
	require.True(t, c.IsProduction())
	require.Equal(t, "secret-1", c.SyncAPIKey)
	require.Equal(t, "https://app.example.com", c.AppBaseURL, "trailing slash trimmed")
	require.Equal(t, 30*time.Second, c.SyncTimeout)
	require.False(t, c.LMSEnabled)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.AllowedOrigins)
}

func TestLoad_APIKeyFallsBackToWordpressKey(t *testing.T) {
	t.Setenv("WORDPRESS_API_KEY", "legacy-key")

	c := Load()
	require.Equal(t, "legacy-key", c.SyncAPIKey)
}

func TestLoad_BadTimeoutFallsBack(t *testing.T) {
	t.Setenv("SYNC_TIMEOUT_SECONDS", "not-a-number")

	c := Load()
	require.Equal(t, 15*time.Second, c.SyncTimeout)
}
