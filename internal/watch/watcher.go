// Package watch contains the driver loop: it owns the snapshot baseline and
// runs the poll cycle of fetch, reconcile, notify, and persist on a fixed
// interval.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/poswatch/internal/domain"
	"github.com/alanyoungcy/poswatch/internal/notify"
	"github.com/alanyoungcy/poswatch/internal/reconcile"
)

// Notification event types emitted by the watcher itself (alert kinds carry
// their own, see domain.AlertKind.Event).
const (
	EventStarted = "watcher_started"
	EventError   = "watcher_error"
)

// Config holds the watcher's polling, filtering, and retry parameters.
type Config struct {
	UserAddress      string
	PollInterval     time.Duration
	ChangeThreshold  float64
	MaxRetryDuration time.Duration
	RetryInterval    time.Duration
	// HaltOnFailure stops the loop after a failed cycle instead of retrying
	// on the next tick.
	HaltOnFailure bool
}

// Watcher polls the position feed and reconciles each result against the
// previous snapshot. It is the sole owner of the snapshot: loaded once at
// start, replaced wholesale at the end of every successful cycle.
type Watcher struct {
	cfg      Config
	fetcher  domain.PositionFetcher
	store    domain.SnapshotStore
	notifier *notify.Notifier
	logger   *slog.Logger

	baseline domain.Snapshot
}

// New creates a Watcher from its collaborators.
func New(cfg Config, fetcher domain.PositionFetcher, store domain.SnapshotStore, notifier *notify.Notifier, logger *slog.Logger) *Watcher {
	return &Watcher{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "watcher")),
	}
}

// Run starts the polling loop and blocks until the context is cancelled or,
// with HaltOnFailure set, until a cycle fails. The first cycle runs
// immediately; subsequent cycles run on the poll interval.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.reportCycleError(ctx, err)
			if w.cfg.HaltOnFailure {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce loads the baseline, runs a single cycle, and returns. Used by the
// "once" mode for operator spot-checks.
func (w *Watcher) RunOnce(ctx context.Context) error {
	if err := w.loadBaseline(ctx); err != nil {
		return err
	}
	return w.runCycle(ctx)
}

// start loads the baseline snapshot and announces the watcher.
func (w *Watcher) start(ctx context.Context) error {
	if err := w.loadBaseline(ctx); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "watcher starting",
		slog.String("user", w.cfg.UserAddress),
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Float64("change_threshold", w.cfg.ChangeThreshold),
		slog.Int("baseline_positions", len(w.baseline)),
	)

	body := fmt.Sprintf("User: %s\nChange threshold: %g\nRetry budget: %s",
		w.cfg.UserAddress, w.cfg.ChangeThreshold, w.cfg.MaxRetryDuration)
	if err := w.notifier.Notify(ctx, EventStarted, "Position watcher started", body); err != nil {
		// Startup notice is best-effort like everything else.
		w.logger.WarnContext(ctx, "startup notification failed", slog.String("error", err.Error()))
	}
	return nil
}

func (w *Watcher) loadBaseline(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("watch: load snapshot: %w", err)
	}
	w.baseline = snap
	return nil
}

// runCycle performs one fetch → reconcile → notify → persist pass. The
// in-memory baseline advances only after a successful save, so a failed
// cycle leaves the last durable snapshot authoritative and the next cycle
// re-diffs against it.
func (w *Watcher) runCycle(ctx context.Context) error {
	cycleID := uuid.NewString()
	logger := w.logger.With(slog.String("cycle", cycleID))

	positions, err := w.fetchWithRetry(ctx, logger)
	if err != nil {
		return err
	}

	alerts, next, err := reconcile.Diff(w.baseline, positions, w.cfg.ChangeThreshold)
	if err != nil {
		return fmt.Errorf("watch: reconcile: %w", err)
	}

	for _, a := range alerts {
		// Delivery failures are logged inside the notifier; they must not
		// abort the cycle or block persistence.
		if err := w.notifier.Notify(ctx, a.Kind.Event(), a.Title, a.Body); err != nil {
			logger.WarnContext(ctx, "alert delivery failed",
				slog.String("kind", string(a.Kind)),
				slog.String("key", a.Key),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := w.store.Save(ctx, next); err != nil {
		return fmt.Errorf("watch: save snapshot: %w", err)
	}
	w.baseline = next

	logger.InfoContext(ctx, "cycle complete",
		slog.Int("positions", len(next)),
		slog.Int("alerts", len(alerts)),
	)
	return nil
}

// fetchWithRetry retries the fetch until it succeeds or the total elapsed
// retry budget is spent, waiting RetryInterval between attempts with the
// final wait shortened to fit the remaining budget. Every error is retried
// the same way; there is no transient-vs-permanent classification.
func (w *Watcher) fetchWithRetry(ctx context.Context, logger *slog.Logger) ([]domain.Position, error) {
	start := time.Now()
	attempt := 0

	for {
		positions, err := w.fetcher.GetPositions(ctx, w.cfg.UserAddress)
		if err == nil {
			return positions, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attempt++
		elapsed := time.Since(start)
		logger.WarnContext(ctx, "fetch failed",
			slog.Int("attempt", attempt),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)

		if elapsed >= w.cfg.MaxRetryDuration {
			return nil, domain.Fatal(fmt.Errorf(
				"watch: no data for %s (%d attempts), giving up: %w",
				w.cfg.MaxRetryDuration, attempt, err))
		}

		wait := w.cfg.RetryInterval
		if remaining := w.cfg.MaxRetryDuration - elapsed; wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// reportCycleError logs the failure and pushes it to the notification
// channels so a dead upstream pages instead of failing silently.
func (w *Watcher) reportCycleError(ctx context.Context, err error) {
	w.logger.ErrorContext(ctx, "cycle failed",
		slog.Bool("fatal", domain.IsFatal(err)),
		slog.String("error", err.Error()),
	)
	if nerr := w.notifier.Notify(ctx, EventError, "Position watcher error", err.Error()); nerr != nil {
		w.logger.WarnContext(ctx, "error notification failed", slog.String("error", nerr.Error()))
	}
}
