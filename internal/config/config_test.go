package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.Equal(t, 2, cfg.Notify.Workers)
	assert.Equal(t, 3, cfg.Notify.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.StatusSweepInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NOTIFY_WORKERS", "8")
	t.Setenv("STATUS_SWEEP_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "noreply@example.com", cfg.Mail.From)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "gather:notifications", cfg.Redis.Key)
	assert.Equal(t, 8, cfg.Notify.Workers)
	assert.Equal(t, time.Minute, cfg.StatusSweepInterval)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BlankSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "   ")

	_, err := Load()
	assert.Error(t, err)
}
