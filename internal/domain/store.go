package domain

import "context"

// SnapshotStore persists the last-known snapshot. Load returns an empty
// snapshot when no prior state exists. Save is a full overwrite; the stored
// snapshot is never partially updated.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// PositionFetcher retrieves the account's current open positions from the
// upstream data source.
type PositionFetcher interface {
	GetPositions(ctx context.Context, user string) ([]Position, error)
}
