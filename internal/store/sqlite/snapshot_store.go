// Package sqlite implements domain.SnapshotStore on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
	key        TEXT PRIMARY KEY,
	size       REAL NOT NULL,
	avg_price  REAL NOT NULL,
	title      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SnapshotStore persists the snapshot in a single SQLite table.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Load reads every snapshot row. An empty table yields an empty snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, size, avg_price, title, outcome FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load snapshot: %w", err)
	}
	defer rows.Close()

	snap := domain.Snapshot{}
	for rows.Next() {
		var key string
		var rec domain.PositionRecord
		if err := rows.Scan(&key, &rec.Size, &rec.AvgPrice, &rec.Title, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("sqlite: scan snapshot row: %w", err)
		}
		snap[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in a single transaction, so readers
// never observe a partially updated state.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("sqlite: clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot (key, size, avg_price, title, outcome) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, rec := range snap {
		if _, err := stmt.ExecContext(ctx, key, rec.Size, rec.AvgPrice, rec.Title, rec.Outcome); err != nil {
			return fmt.Errorf("sqlite: insert snapshot row %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
