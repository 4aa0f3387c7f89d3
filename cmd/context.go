package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/ffx64/discord-presence-go/internal/config"
	"github.com/ffx64/discord-presence-go/internal/logging"
)

type commandContext struct {
	flags *pflag.FlagSet

	configPath string
	clientID   uint64
	logLevel   string
	logFormat  string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// overrides returns the persistent flags the user actually set, keyed like
// the configuration file.
func (c *commandContext) overrides() map[string]any {
	out := map[string]any{}
	if c.flags == nil {
		return out
	}
	if c.flags.Changed("client-id") {
		out["client_id"] = c.clientID
	}
	if c.flags.Changed("log-level") {
		out["log_level"] = c.logLevel
	}
	if c.flags.Changed("log-format") {
		out["log_format"] = c.logFormat
	}
	return out
}

func (c *commandContext) ensureConfig(extra map[string]any) (*config.Config, error) {
	c.configOnce.Do(func() {
		overrides := c.overrides()
		for k, v := range extra {
			overrides[k] = v
		}
		c.config, c.configErr = config.Load(strings.TrimSpace(c.configPath), overrides)
	})
	return c.config, c.configErr
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
