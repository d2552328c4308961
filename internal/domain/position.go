// Package domain defines the core types for the position watcher: fetched
// positions, persisted snapshot records, alerts, and the store/fetcher
// interfaces implemented by the platform packages.
package domain

import (
	"fmt"
	"math"
)

// Position is a single open position as returned by the data API. CurPrice
// and PercentPnL are transient display values; they are never persisted or
// diffed.
type Position struct {
	ConditionID string
	Outcome     string
	Title       string
	Size        float64
	AvgPrice    float64
	CurPrice    float64
	PercentPnL  float64
}

// Key returns the identity under which the position is tracked across
// polling cycles. The market's condition ID alone is not enough: one market
// carries multiple outcomes ("Yes" and "No" shares of the same event), so
// keying on the condition ID alone silently merges them and corrupts the
// diff. The outcome label is part of the key.
func (p Position) Key() string {
	return p.ConditionID + ":" + p.Outcome
}

// Validate reports whether the position is well-formed enough to reconcile.
// An empty outcome label is legal (the key degenerates but stays stable);
// a missing condition ID or a non-finite size is not.
func (p Position) Validate() error {
	if p.ConditionID == "" {
		return fmt.Errorf("position %q: %w: conditionId", p.Title, ErrMissingField)
	}
	if math.IsNaN(p.Size) || math.IsInf(p.Size, 0) {
		return fmt.Errorf("position %s: %w: size=%v", p.Key(), ErrMalformedPosition, p.Size)
	}
	return nil
}

// Record converts the position to its persisted form.
func (p Position) Record() PositionRecord {
	return PositionRecord{
		Size:     p.Size,
		AvgPrice: p.AvgPrice,
		Title:    p.Title,
		Outcome:  p.Outcome,
	}
}

// PositionRecord is a snapshot entry. It holds only what the next cycle's
// diff needs; current price and PnL are refetched every cycle. JSON tags
// match the on-disk state file format.
type PositionRecord struct {
	Size     float64 `json:"size"`
	AvgPrice float64 `json:"avgPrice"`
	Title    string  `json:"title"`
	Outcome  string  `json:"outcome"`
}

// Snapshot maps position keys to records and represents all open positions
// as of the last successful cycle. Invariant: no entry has size <= 0.
type Snapshot map[string]PositionRecord
