package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/itracker")
	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.AchievementPoll)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.TrustedProxyHops)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("ACHIEVEMENT_POLL_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("TRUSTED_PROXY_HOPS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone.String())
	assert.Equal(t, 30*time.Second, cfg.AchievementPoll)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 2, cfg.TrustedProxyHops)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/itracker")
	t.Setenv("CLERK_SECRET_KEY", "")
	_, err = Load()
	assert.ErrorContains(t, err, "CLERK_SECRET_KEY")
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timezone", "APP_TIMEZONE", "Mars/Olympus"},
		{"bad poll interval", "ACHIEVEMENT_POLL_INTERVAL", "soon"},
		{"negative poll interval", "ACHIEVEMENT_POLL_INTERVAL", "-1s"},
		{"bad max conns", "DB_MAX_CONNS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
