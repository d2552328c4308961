package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/poswatch/internal/cache/redis"
	"github.com/alanyoungcy/poswatch/internal/config"
	"github.com/alanyoungcy/poswatch/internal/domain"
	"github.com/alanyoungcy/poswatch/internal/notify"
	"github.com/alanyoungcy/poswatch/internal/platform/polymarket"
	filestore "github.com/alanyoungcy/poswatch/internal/store/file"
	"github.com/alanyoungcy/poswatch/internal/store/postgres"
	"github.com/alanyoungcy/poswatch/internal/store/sqlite"
	"github.com/alanyoungcy/poswatch/internal/watch"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	SnapshotStore domain.SnapshotStore
	Fetcher       domain.PositionFetcher
	Notifier      *notify.Notifier
	Watcher       *watch.Watcher
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Snapshot store, per configured backend ---
	switch strings.ToLower(cfg.Snapshot.Backend) {
	case "file":
		deps.SnapshotStore = filestore.NewSnapshotStore(cfg.Snapshot.Path)

	case "sqlite":
		store, err := sqlite.NewSnapshotStore(cfg.Snapshot.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: sqlite: %w", err)
		}
		closers = append(closers, func() { _ = store.Close() })
		deps.SnapshotStore = store

	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		store, err := postgres.NewSnapshotStore(ctx, pgClient.Pool())
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		deps.SnapshotStore = store

	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.SnapshotStore = redis.NewSnapshotStore(redisClient)

	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown snapshot backend %q", cfg.Snapshot.Backend)
	}

	// --- Fetch client ---
	deps.Fetcher = polymarket.NewDataClient(polymarket.DataClientConfig{
		BaseURL:       cfg.Polymarket.DataHost,
		Limit:         cfg.Watch.FetchLimit,
		SizeThreshold: cfg.Watch.SizeThreshold,
		Timeout:       cfg.Watch.FetchTimeout.Duration,
	})

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.FeishuWebhookURL != "" {
		senders = append(senders, notify.NewFeishuSender(cfg.Notify.FeishuWebhookURL))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Watcher ---
	deps.Watcher = watch.New(watch.Config{
		UserAddress:      cfg.Watch.UserAddress,
		PollInterval:     cfg.Watch.PollInterval.Duration,
		ChangeThreshold:  cfg.Watch.ChangeThreshold,
		MaxRetryDuration: cfg.Watch.MaxRetryDuration.Duration,
		RetryInterval:    cfg.Watch.RetryInterval.Duration,
		HaltOnFailure:    strings.EqualFold(cfg.Watch.OnFailure, "halt"),
	}, deps.Fetcher, deps.SnapshotStore, deps.Notifier, logger)

	return deps, cleanup, nil
}
