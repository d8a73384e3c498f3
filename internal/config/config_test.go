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

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ledger", cfg.LedgerAddress)
	assert.Equal(t, "admin", cfg.AdminAddress)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 256, cfg.NotifyBuffer)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "cardledger", cfg.Database.DBName)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "ledger:notifications", cfg.Redis.Stream)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_ADDRESS", "0xadmin")
	t.Setenv("CORS_ORIGINS", "https://a.test,https://b.test")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "db")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "0xadmin", cfg.AdminAddress)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=cardledger sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
}

func TestLoadValidates(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"admin equals ledger", map[string]string{"ADMIN_ADDRESS": "same", "LEDGER_ADDRESS": "same"}},
		{"non-positive buffer", map[string]string{"NOTIFY_BUFFER": "0"}},
		{"bad duration", map[string]string{"JWT_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Warnings(), 1)
	assert.Contains(t, cfg.Warnings()[0], "JWT_SIGNING_KEY")

	t.Setenv("JWT_SIGNING_KEY", "a-real-secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings())
}

func TestLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "json"}
	assert.NotNil(t, cfg.Logger())

	cfg = Config{LogLevel: "nonsense"}
	assert.NotNil(t, cfg.Logger())
}
