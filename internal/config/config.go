// Package config defines the top-level configuration for the position
// watcher and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POSWATCH_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Watch      WatchConfig      `toml:"watch"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the upstream API endpoint.
type PolymarketConfig struct {
	DataHost string `toml:"data_host"`
}

// WatchConfig holds the polling, noise-filtering, and retry parameters.
type WatchConfig struct {
	// UserAddress is the wallet whose positions are monitored.
	UserAddress string `toml:"user_address"`
	// PollInterval is the sleep between cycles.
	PollInterval duration `toml:"poll_interval"`
	// ChangeThreshold suppresses size changes with an absolute difference
	// below it (floating-point noise).
	ChangeThreshold float64 `toml:"change_threshold"`
	// FetchLimit caps positions per fetch.
	FetchLimit int `toml:"fetch_limit"`
	// SizeThreshold is passed to the data API to drop dust positions
	// upstream.
	SizeThreshold float64 `toml:"size_threshold"`
	// FetchTimeout bounds a single fetch attempt.
	FetchTimeout duration `toml:"fetch_timeout"`
	// MaxRetryDuration is the total elapsed budget for fetch retries.
	MaxRetryDuration duration `toml:"max_retry_duration"`
	// RetryInterval is the wait between fetch attempts.
	RetryInterval duration `toml:"retry_interval"`
	// OnFailure selects what the loop does after a cycle fails for good:
	// "halt" stops the process, "continue" retries next cycle.
	OnFailure string `toml:"on_failure"`
}

// SnapshotConfig selects and parameterizes the snapshot store backend.
type SnapshotConfig struct {
	// Backend is one of "file", "sqlite", "postgres", "redis".
	Backend string `toml:"backend"`
	// Path is the state file (file backend) or database file (sqlite).
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// NotifyConfig holds notification channel credentials. Channels with empty
// credentials are simply not wired.
type NotifyConfig struct {
	FeishuWebhookURL  string   `toml:"feishu_webhook_url"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			DataHost: "https://data-api.polymarket.com",
		},
		Watch: WatchConfig{
			PollInterval:     duration{30 * time.Second},
			ChangeThreshold:  0.01,
			FetchLimit:       100,
			SizeThreshold:    1.0,
			FetchTimeout:     duration{10 * time.Second},
			MaxRetryDuration: duration{60 * time.Second},
			RetryInterval:    duration{10 * time.Second},
			OnFailure:        "halt",
		},
		Snapshot: SnapshotConfig{
			Backend: "file",
			Path:    "state.json",
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "poswatch",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 4,
			PoolMinConns: 1,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		Notify: NotifyConfig{
			Events: []string{},
		},
		Mode:     "watch",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"watch": true,
	"once":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validBackends enumerates the accepted snapshot store backends.
var validBackends = map[string]bool{
	"file":     true,
	"sqlite":   true,
	"postgres": true,
	"redis":    true,
}

// validFailurePolicies enumerates the accepted watch.on_failure values.
var validFailurePolicies = map[string]bool{
	"halt":     true,
	"continue": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: watch, once)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.DataHost == "" {
		errs = append(errs, "polymarket: data_host must not be empty")
	}

	if strings.TrimSpace(c.Watch.UserAddress) == "" {
		errs = append(errs, "watch: user_address must not be empty")
	}
	if c.Watch.PollInterval.Duration <= 0 {
		errs = append(errs, "watch: poll_interval must be positive")
	}
	if c.Watch.ChangeThreshold < 0 {
		errs = append(errs, "watch: change_threshold must not be negative")
	}
	if c.Watch.FetchLimit < 1 {
		errs = append(errs, "watch: fetch_limit must be >= 1")
	}
	if c.Watch.FetchTimeout.Duration <= 0 {
		errs = append(errs, "watch: fetch_timeout must be positive")
	}
	if c.Watch.MaxRetryDuration.Duration <= 0 {
		errs = append(errs, "watch: max_retry_duration must be positive")
	}
	if c.Watch.RetryInterval.Duration <= 0 {
		errs = append(errs, "watch: retry_interval must be positive")
	}
	if !validFailurePolicies[strings.ToLower(c.Watch.OnFailure)] {
		errs = append(errs, fmt.Sprintf("watch: unknown on_failure %q (valid: halt, continue)", c.Watch.OnFailure))
	}

	backend := strings.ToLower(c.Snapshot.Backend)
	if !validBackends[backend] {
		errs = append(errs, fmt.Sprintf("snapshot: unknown backend %q (valid: file, sqlite, postgres, redis)", c.Snapshot.Backend))
	}
	if (backend == "file" || backend == "sqlite") && c.Snapshot.Path == "" {
		errs = append(errs, "snapshot: path must not be empty for backend "+backend)
	}

	if backend == "postgres" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if backend == "redis" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Telegram credentials must be set together or not at all.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
