package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POSWATCH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POSWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.DataHost, "POSWATCH_POLYMARKET_DATA_HOST")

	// ── Watch ──
	setStr(&cfg.Watch.UserAddress, "POSWATCH_WATCH_USER_ADDRESS")
	setDuration(&cfg.Watch.PollInterval, "POSWATCH_WATCH_POLL_INTERVAL")
	setFloat64(&cfg.Watch.ChangeThreshold, "POSWATCH_WATCH_CHANGE_THRESHOLD")
	setInt(&cfg.Watch.FetchLimit, "POSWATCH_WATCH_FETCH_LIMIT")
	setFloat64(&cfg.Watch.SizeThreshold, "POSWATCH_WATCH_SIZE_THRESHOLD")
	setDuration(&cfg.Watch.FetchTimeout, "POSWATCH_WATCH_FETCH_TIMEOUT")
	setDuration(&cfg.Watch.MaxRetryDuration, "POSWATCH_WATCH_MAX_RETRY_DURATION")
	setDuration(&cfg.Watch.RetryInterval, "POSWATCH_WATCH_RETRY_INTERVAL")
	setStr(&cfg.Watch.OnFailure, "POSWATCH_WATCH_ON_FAILURE")

	// ── Snapshot ──
	setStr(&cfg.Snapshot.Backend, "POSWATCH_SNAPSHOT_BACKEND")
	setStr(&cfg.Snapshot.Path, "POSWATCH_SNAPSHOT_PATH")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "POSWATCH_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POSWATCH_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POSWATCH_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POSWATCH_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POSWATCH_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POSWATCH_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POSWATCH_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "POSWATCH_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "POSWATCH_POSTGRES_POOL_MIN_CONNS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "POSWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POSWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POSWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POSWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POSWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POSWATCH_REDIS_TLS_ENABLED")

	// ── Notify ──
	setStr(&cfg.Notify.FeishuWebhookURL, "POSWATCH_NOTIFY_FEISHU_WEBHOOK_URL")
	setStr(&cfg.Notify.DiscordWebhookURL, "POSWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStr(&cfg.Notify.TelegramToken, "POSWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POSWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "POSWATCH_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POSWATCH_MODE")
	setStr(&cfg.LogLevel, "POSWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
