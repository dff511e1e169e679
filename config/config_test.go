package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "NATS_URL", "NATS_NKEY_SEED", "HTTP_ADDR", "JWT_SECRET",
		"HTTP_RATE_LIMIT", "METRICS_ADDRESS", "LOG_LEVEL", "APP_ENV",
		"EXPORT_DIR", "SEARCH_DEBOUNCE", "JOURNAL_DIR",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
nats:
  url: nats://file:4222
http:
  addr: ":9000"
  jwt_secret: s3cret
search:
  debounce: 250ms
journal:
  dir: /var/lib/race-tally/journal
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "s3cret", cfg.HTTP.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "/var/lib/race-tally/journal", cfg.Journal.Dir)

	// untouched sections keep their defaults
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, float64(20), cfg.HTTP.RateLimit)
	assert.Equal(t, 40, cfg.HTTP.RateBurst)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
export:
  dir: from-file
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("EXPORT_DIR", "from-env")
	t.Setenv("SEARCH_DEBOUNCE", "1s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	assert.Equal(t, "from-env", cfg.Export.Dir)
	assert.Equal(t, time.Second, cfg.Search.Debounce)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.SlogLevel())
}

func TestLoadConfigFallsBackToEnv(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig(missing)
		require.Error(t, err)
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://env/db")
		t.Setenv("NATS_URL", "nats://env:4222")
		t.Setenv("HTTP_RATE_LIMIT", "2.5")

		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
		assert.Equal(t, 2.5, cfg.HTTP.RateLimit)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
	})
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{name: "rate limit", env: "HTTP_RATE_LIMIT", val: "fast"},
		{name: "debounce", env: "SEARCH_DEBOUNCE", val: "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://env/db")
			t.Setenv(tt.env, tt.val)
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			require.Error(t, err)
		})
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "postgres: [unterminated")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ObservabilityConfig{LogLevel: in}.SlogLevel(), in)
	}
}
