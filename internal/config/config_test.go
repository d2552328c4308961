package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, "https://data-api.polymarket.com", cfg.Polymarket.DataHost)
	assert.Equal(t, 30*time.Second, cfg.Watch.PollInterval.Duration)
	assert.Equal(t, 0.01, cfg.Watch.ChangeThreshold)
	assert.Equal(t, 100, cfg.Watch.FetchLimit)
	assert.Equal(t, 60*time.Second, cfg.Watch.MaxRetryDuration.Duration)
	assert.Equal(t, 10*time.Second, cfg.Watch.RetryInterval.Duration)
	assert.Equal(t, "halt", cfg.Watch.OnFailure)
	assert.Equal(t, "file", cfg.Snapshot.Backend)
	assert.Equal(t, "watch", cfg.Mode)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[watch]
user_address = "0xwallet"
poll_interval = "45s"
change_threshold = 0.5

[snapshot]
backend = "sqlite"
path = "poswatch.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0xwallet", cfg.Watch.UserAddress)
	assert.Equal(t, 45*time.Second, cfg.Watch.PollInterval.Duration)
	assert.Equal(t, 0.5, cfg.Watch.ChangeThreshold)
	assert.Equal(t, "sqlite", cfg.Snapshot.Backend)
	// Untouched fields keep their defaults.
	assert.Equal(t, "https://data-api.polymarket.com", cfg.Polymarket.DataHost)
	assert.Equal(t, 100, cfg.Watch.FetchLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSWATCH_WATCH_USER_ADDRESS", "0xoverride")
	t.Setenv("POSWATCH_WATCH_POLL_INTERVAL", "1m")
	t.Setenv("POSWATCH_SNAPSHOT_BACKEND", "redis")
	t.Setenv("POSWATCH_NOTIFY_EVENTS", "position_opened, position_closed")

	path := writeConfig(t, `
[watch]
user_address = "0xfile"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0xoverride", cfg.Watch.UserAddress)
	assert.Equal(t, time.Minute, cfg.Watch.PollInterval.Duration)
	assert.Equal(t, "redis", cfg.Snapshot.Backend)
	assert.Equal(t, []string{"position_opened", "position_closed"}, cfg.Notify.Events)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg := Defaults()
		cfg.Watch.UserAddress = "0xwallet"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing user address", func(c *Config) { c.Watch.UserAddress = "" }, "user_address"},
		{"bad mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad backend", func(c *Config) { c.Snapshot.Backend = "tape" }, "unknown backend"},
		{"file backend without path", func(c *Config) { c.Snapshot.Path = "" }, "path"},
		{"negative threshold", func(c *Config) { c.Watch.ChangeThreshold = -1 }, "change_threshold"},
		{"zero poll interval", func(c *Config) { c.Watch.PollInterval.Duration = 0 }, "poll_interval"},
		{"bad on_failure", func(c *Config) { c.Watch.OnFailure = "explode" }, "on_failure"},
		{"telegram token without chat id", func(c *Config) { c.Notify.TelegramToken = "tok" }, "telegram"},
		{
			"postgres backend without database",
			func(c *Config) {
				c.Snapshot.Backend = "postgres"
				c.Postgres.Database = ""
			},
			"database",
		},
		{
			"redis backend without addr",
			func(c *Config) {
				c.Snapshot.Backend = "redis"
				c.Redis.Addr = ""
			},
			"addr",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "user_address")
}
