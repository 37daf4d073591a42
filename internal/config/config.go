// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config holding every default.
// - Load(ctx) layers .env, an optional YAML file and LADDER_ env vars on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Store drivers accepted by store_driver.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the profile cache backend: memory, file or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the directory (file) or database path (sqlite).
	StorePath string `koanf:"store_path"`

	// StoreSlot is the base cache slot; profiles live under "<slot>:<user id>".
	StoreSlot string `koanf:"store_slot"`

	// FragmentMarker prefixes the cross-session payload in the launch fragment.
	FragmentMarker string `koanf:"fragment_marker"`

	// BotToken enables handshake signature checks when set.
	BotToken string `koanf:"bot_token"`

	SessionTTLSeconds    int `koanf:"session_ttl_seconds"`
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// MailboxSize bounds each session actor's mailbox.
	MailboxSize int `koanf:"mailbox_size"`

	// OutboxSize bounds frames held for a disconnected host.
	OutboxSize int `koanf:"outbox_size"`

	HistoryLimit int `koanf:"history_limit"`
	DedupeSize   int `koanf:"dedupe_size"`

	// SearchMinMS and SearchMaxMS bound the simulated opponent search.
	SearchMinMS int `koanf:"search_min_ms"`
	SearchMaxMS int `koanf:"search_max_ms"`

	// VerifyResetMS is how long a verification stays visible before reset.
	VerifyResetMS int `koanf:"verify_reset_ms"`

	// ModeMultipliers maps game modes to their points multiplier.
	ModeMultipliers map[string]float64 `koanf:"mode_multipliers"`

	// DefaultModeMultiplier is used for unknown modes.
	DefaultModeMultiplier float64 `koanf:"default_mode_multiplier"`

	// GameModes lists the selectable modes.
	GameModes []string `koanf:"game_modes"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StoreDriver:          StoreMemory,
		StoreSlot:            "userData",
		FragmentMarker:       "sync=",
		SessionTTLSeconds:    1800,
		SweepIntervalSeconds: 60,
		MailboxSize:          64,
		OutboxSize:           32,
		HistoryLimit:         50,
		DedupeSize:           256,
		SearchMinMS:          3000,
		SearchMaxMS:          7000,
		VerifyResetMS:        2000,
		ModeMultipliers: map[string]float64{
			"challenge":      1.5,
			"tournament":     2.0,
			"grandChallenge": 3.0,
		},
		DefaultModeMultiplier: 1.0,
		GameModes:             []string{"ladder", "1v1", "2v2", "challenge", "tournament"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.SessionTTLSeconds <= 0 || c.SweepIntervalSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds and sweep_interval_seconds must be positive", ErrInvalidConfig)
	case c.MailboxSize <= 0 || c.OutboxSize <= 0 || c.HistoryLimit <= 0 || c.DedupeSize <= 0:
		return fmt.Errorf("%w: mailbox, outbox, history and dedupe sizes must be positive", ErrInvalidConfig)
	case c.SearchMinMS <= 0 || c.SearchMaxMS < c.SearchMinMS:
		return fmt.Errorf("%w: search window %d-%dms", ErrInvalidConfig, c.SearchMinMS, c.SearchMaxMS)
	case c.VerifyResetMS <= 0:
		return fmt.Errorf("%w: verify_reset_ms must be positive", ErrInvalidConfig)
	case c.DefaultModeMultiplier <= 0:
		return fmt.Errorf("%w: default_mode_multiplier must be positive", ErrInvalidConfig)
	case len(c.GameModes) == 0:
		return fmt.Errorf("%w: game_modes must not be empty", ErrInvalidConfig)
	}
	for mode, m := range c.ModeMultipliers {
		if m <= 0 {
			return fmt.Errorf("%w: multiplier for %q must be positive", ErrInvalidConfig, mode)
		}
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("%w: store_path is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// SessionTTL is SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// SweepInterval is SweepIntervalSeconds as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// SearchWindow returns the opponent search bounds.
func (c *Config) SearchWindow() (minWait, maxWait time.Duration) {
	return time.Duration(c.SearchMinMS) * time.Millisecond, time.Duration(c.SearchMaxMS) * time.Millisecond
}

// VerifyReset is VerifyResetMS as a duration.
func (c *Config) VerifyReset() time.Duration {
	return time.Duration(c.VerifyResetMS) * time.Millisecond
}
