package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from the
// environment.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	DatabaseDSN   string `env:"DATABASE_DSN"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// PasswordScheme selects how local credential secrets are protected
	// at rest: "bcrypt" (one-way hash, default) or "aes-256-gcm"
	// (reversible cipher, legacy). The cipher scheme requires
	// CipherSecret.
	PasswordScheme string `env:"PASSWORD_SCHEME" envDefault:"bcrypt"`
	CipherSecret   string `env:"CIPHER_SECRET"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	FacebookAppID       string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret   string `env:"FACEBOOK_APP_SECRET"`
	FacebookCallbackURL string `env:"FACEBOOK_CALLBACK_URL"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// GoogleEnabled reports whether the Google provider is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleCallbackURL != ""
}

// FacebookEnabled reports whether the Facebook provider is configured.
func (c Config) FacebookEnabled() bool {
	return c.FacebookAppID != "" && c.FacebookAppSecret != "" && c.FacebookCallbackURL != ""
}
