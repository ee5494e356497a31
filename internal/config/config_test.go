package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "bcrypt", cfg.PasswordScheme)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PASSWORD_SCHEME", "aes-256-gcm")
	t.Setenv("CIPHER_SECRET", "process-secret")
	t.Setenv("GOOGLE_CLIENT_ID", "gid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "gsecret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://example.com/oauth/callback/google")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "aes-256-gcm", cfg.PasswordScheme)
	assert.True(t, cfg.GoogleEnabled())
	assert.False(t, cfg.FacebookEnabled())
}

func TestProviderEnablement(t *testing.T) {
	var cfg Config
	assert.False(t, cfg.GoogleEnabled())
	assert.False(t, cfg.FacebookEnabled())

	cfg.FacebookAppID = "fbid"
	cfg.FacebookAppSecret = "fbsecret"
	assert.False(t, cfg.FacebookEnabled(), "callback URL still missing")

	cfg.FacebookCallbackURL = "https://example.com/oauth/callback/facebook"
	assert.True(t, cfg.FacebookEnabled())
}
