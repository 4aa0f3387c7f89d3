package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffx64/discord-presence-go/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presence.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("DISCORD_PRESENCE_CLIENT_ID", "425407036495495169")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(425407036495495169), cfg.ClientID)
	assert.Equal(t, 5*time.Second, cfg.ErrorSleep)
	assert.Equal(t, -1, cfg.RetryLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.True(t, cfg.ShowTime)
	assert.Equal(t, "discord-presence-425407036495495169.lock", filepath.Base(cfg.LockFile))
}

func TestFileThenEnvThenOverrides(t *testing.T) {
	path := writeFile(t, `
client_id = 1
error_sleep = "2s"
retry_limit = 3
log_level = "debug"
show_time = false
lock_file = "/tmp/presence.lock"
`)
	t.Setenv("DISCORD_PRESENCE_RETRY_LIMIT", "7")
	t.Setenv("DISCORD_PRESENCE_LOG_FORMAT", "json")

	cfg, err := config.Load(path, map[string]any{"log_level": "warn"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), cfg.ClientID)
	assert.Equal(t, 2*time.Second, cfg.ErrorSleep)
	assert.Equal(t, 7, cfg.RetryLimit)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.ShowTime)
	assert.Equal(t, "/tmp/presence.lock", cfg.LockFile)
}

func TestMissingClientID(t *testing.T) {
	_, err := config.Load("", nil)
	assert.ErrorIs(t, err, config.ErrConfigRequired)
}

func TestMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMalformedFile(t *testing.T) {
	_, err := config.Load(writeFile(t, "client_id = ["), nil)
	assert.Error(t, err)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"negative error sleep", map[string]any{"error_sleep": "-1s"}},
		{"zero poll interval", map[string]any{"poll_interval": "0s"}},
		{"retry limit below -1", map[string]any{"retry_limit": -2}},
		{"unknown log level", map[string]any{"log_level": "loud"}},
		{"unknown log format", map[string]any{"log_format": "xml"}},
		{"non numeric client id", map[string]any{"client_id": "wumpus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := map[string]any{"client_id": 1}
			for k, v := range tt.overrides {
				overrides[k] = v
			}

			_, err := config.Load("", overrides)
			assert.ErrorIs(t, err, config.ErrConfigInvalid)
		})
	}
}
