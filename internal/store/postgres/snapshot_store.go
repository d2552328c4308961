package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
	key        TEXT PRIMARY KEY,
	size       DOUBLE PRECISION NOT NULL,
	avg_price  DOUBLE PRECISION NOT NULL,
	title      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SnapshotStore implements domain.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given connection
// pool and ensures the snapshot table exists.
func NewSnapshotStore(ctx context.Context, pool *pgxpool.Pool) (*SnapshotStore, error) {
	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		return nil, fmt.Errorf("postgres: create snapshot table: %w", err)
	}
	return &SnapshotStore{pool: pool}, nil
}

// Load reads every snapshot row. An empty table yields an empty snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, size, avg_price, title, outcome FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load snapshot: %w", err)
	}
	defer rows.Close()

	snap := domain.Snapshot{}
	for rows.Next() {
		var key string
		var rec domain.PositionRecord
		if err := rows.Scan(&key, &rec.Size, &rec.AvgPrice, &rec.Title, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot row: %w", err)
		}
		snap[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("postgres: clear snapshot: %w", err)
	}

	for key, rec := range snap {
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshot (key, size, avg_price, title, outcome, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			key, rec.Size, rec.AvgPrice, rec.Title, rec.Outcome,
		); err != nil {
			return fmt.Errorf("postgres: insert snapshot row %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit save: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
