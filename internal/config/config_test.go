package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/expenses")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "postgresql://u:p@localhost:5432/expenses", cfg.DatabaseURL)
	assert.Equal(t, ModePolling, cfg.BotMode)
	assert.Equal(t, 24*time.Hour, cfg.FlowTTL)
	assert.Equal(t, int32(1), cfg.DBPoolMin)
	assert.Equal(t, int32(5), cfg.DBPoolMax)
	assert.Equal(t, 30, cfg.UserRateLimit)
	assert.Equal(t, time.Minute, cfg.UserRateWindow)
	assert.Empty(t, cfg.AllowedUserIDs)
	assert.True(t, cfg.IsAllowed(42))
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:zzz")
	t.Setenv("TELEGRAM_ALLOWED_USER_IDS", " 1, 2 ,,3")
	t.Setenv("BOT_MODE", "WEBHOOK")
	t.Setenv("WEBHOOK_BACKGROUND", "true")
	t.Setenv("DB_POOL_MIN_SIZE", "8")
	t.Setenv("DB_POOL_MAX_SIZE", "2")
	t.Setenv("FLOW_TTL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "999:zzz", cfg.BotToken)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AllowedUserIDs)
	assert.True(t, cfg.IsAllowed(2))
	assert.False(t, cfg.IsAllowed(4))
	assert.Equal(t, ModeWebhook, cfg.BotMode)
	assert.True(t, cfg.WebhookBackground)
	assert.Equal(t, int32(8), cfg.DBPoolMax, "max is raised to min")
	assert.Equal(t, 2*time.Hour, cfg.FlowTTL)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingToken)
	})
	t.Run("missing database", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingDatabaseURL)
	})
	t.Run("http database url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DATABASE_URL", "https://example.com/db")
		_, err := Load()
		assert.ErrorIs(t, err, ErrHTTPDatabaseURL)
	})
	t.Run("bad allow-list", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "1,abc")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad mode", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOT_MODE", "carrier-pigeon")
		_, err := Load()
		assert.Error(t, err)
	})
}
