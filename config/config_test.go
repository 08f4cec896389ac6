// config_test.go - Tests for environment configuration
// Run with: go test ./...

package config

import (
	"testing" // Go's testing package
	"time"    // For duration settings

	"github.com/stretchr/testify/assert" // For assertions
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BASE_PRICE", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("SESSION_MAX_AGE", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10.00, cfg.BasePrice)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 14*24*60*60, cfg.SessionMaxAge)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BASE_PRICE", "12.5")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("RESET_TOKEN_TTL", "30m")
	t.Setenv("SESSION_MAX_AGE", "not-a-number") // Falls back to the default

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12.5, cfg.BasePrice)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 14*24*60*60, cfg.SessionMaxAge)
}

func TestValidateRequiresDatabaseAndSecret(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDatabaseURL)

	cfg.DatabaseURL = "plasticity.db"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSessionSecret)

	cfg.SessionSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestLoadIgnoresNonFiniteBasePrice(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		t.Setenv("BASE_PRICE", v)
		assert.Equal(t, 10.00, Load().BasePrice, v)
	}
}
