package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

// snapshotKey is the hash under which the whole snapshot lives. One account,
// one snapshot, one key.
const snapshotKey = "poswatch:snapshot"

// SnapshotStore implements domain.SnapshotStore on a Redis hash: one field
// per position key, each holding the JSON-encoded record.
type SnapshotStore struct {
	rdb *redis.Client
}

// NewSnapshotStore creates a SnapshotStore backed by the given Client.
func NewSnapshotStore(c *Client) *SnapshotStore {
	return &SnapshotStore{rdb: c.Underlying()}
}

// Load reads the full hash. A missing key yields an empty snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	vals, err := s.rdb.HGetAll(ctx, snapshotKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load snapshot: %w", err)
	}

	snap := make(domain.Snapshot, len(vals))
	for key, raw := range vals {
		var rec domain.PositionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("redis: decode snapshot field %s: %w", key, err)
		}
		snap[key] = rec
	}
	return snap, nil
}

// Save replaces the hash with the given snapshot. DEL and HSET run in one
// pipeline so the overwrite is a single round trip.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	fields := make(map[string]interface{}, len(snap))
	for key, rec := range snap {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("redis: encode snapshot field %s: %w", key, err)
		}
		fields[key] = string(raw)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, snapshotKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, snapshotKey, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save snapshot: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
