// Package config loads the command line tool's settings from compiled
// defaults, an optional TOML file and DISCORD_PRESENCE_* environment
// variables, in that order.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ffx64/discord-presence-go/internal/logging"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// EnvPrefix is stripped from environment variable names; the rest is
// lower-cased to form the key.
const EnvPrefix = "DISCORD_PRESENCE_"

var (
	ErrConfigRequired = errors.New("config: required value missing")
	ErrConfigInvalid  = errors.New("config: invalid value")
)

type Config struct {
	ClientID uint64 `koanf:"client_id"`

	ErrorSleep   time.Duration `koanf:"error_sleep"`
	RetryLimit   int           `koanf:"retry_limit"` // -1 retries forever
	PollInterval time.Duration `koanf:"poll_interval"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"` // auto, text or json

	ShowTime bool   `koanf:"show_time"`
	LockFile string `koanf:"lock_file"` // defaults next to the IPC sockets
}

func defaults() *Config {
	return &Config{
		ErrorSleep:   5 * time.Second,
		RetryLimit:   -1,
		PollInterval: ipc.RetryDelay,
		LogLevel:     "info",
		LogFormat:    logging.FormatAuto,
		ShowTime:     true,
	}
}

// Load reads path (skipped when empty), then the environment, then
// overrides, which the command line uses for flags.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if cfg.LockFile == "" && cfg.ClientID != 0 {
		cfg.LockFile = filepath.Join(ipc.DefaultDir(), fmt.Sprintf("discord-presence-%d.lock", cfg.ClientID))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or out of range value.
func (c *Config) Validate() error {
	if c.ClientID == 0 {
		return fmt.Errorf("%w: client_id", ErrConfigRequired)
	}
	if c.ErrorSleep <= 0 {
		return fmt.Errorf("%w: error_sleep must be positive, got %s", ErrConfigInvalid, c.ErrorSleep)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrConfigInvalid, c.PollInterval)
	}
	if c.RetryLimit < -1 {
		return fmt.Errorf("%w: retry_limit must be -1 or more, got %d", ErrConfigInvalid, c.RetryLimit)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrConfigInvalid, c.LogFormat)
	}
	return nil
}
