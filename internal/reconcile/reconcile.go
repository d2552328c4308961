package reconcile

import (
	"fmt"
	"sort"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

// Diff compares the previous snapshot against a freshly fetched position
// list and returns the alerts for every detected transition plus the next
// snapshot to persist. It is pure: it owns neither input and touches no
// state.
//
// The diff runs in two passes. The first walks the fetched positions in
// input order, populating the next snapshot and classifying each position
// against its previous record. The second walks the previous snapshot for
// keys that vanished from the feed: the upstream does not reliably emit
// zero-size rows for fully closed positions, so "closed" is inferred by
// absence. Alerts from the first pass come out in input order, straggler
// closes follow in sorted key order.
//
// A malformed position aborts the whole diff; no partial snapshot or alert
// list escapes.
func Diff(old domain.Snapshot, fetched []domain.Position, threshold float64) ([]domain.Alert, domain.Snapshot, error) {
	alerts := []domain.Alert{}
	next := make(domain.Snapshot, len(fetched))

	for _, p := range fetched {
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("reconcile: %w", err)
		}

		// A non-positive row in the raw feed means "no current position",
		// not a close signal: closes are detected by absence below. The
		// row is neither stored nor alerted on, which keeps the snapshot
		// free of entries with size <= 0.
		if p.Size <= 0 {
			continue
		}

		key := p.Key()
		next[key] = p.Record()

		prev, ok := old[key]
		if !ok {
			// Opens bypass the significance filter: any size > 0 counts.
			alerts = append(alerts, domain.NewOpenedAlert(p))
			continue
		}

		// Insignificant moves are suppressed entirely for this cycle,
		// but the stored record was already updated above.
		if !IsSignificant(prev.Size, p.Size, threshold) {
			continue
		}

		switch {
		case p.Size > prev.Size:
			alerts = append(alerts, domain.NewIncreasedAlert(prev.Size, p))
		case p.Size < prev.Size:
			alerts = append(alerts, domain.NewDecreasedAlert(prev.Size, p))
		}
	}

	// Straggler pass: positions that existed before and vanished from the
	// feed are closed. Sorted key order keeps the output deterministic.
	var gone []string
	for key, prev := range old {
		if _, ok := next[key]; !ok && prev.Size > 0 {
			gone = append(gone, key)
		}
	}
	sort.Strings(gone)
	for _, key := range gone {
		alerts = append(alerts, domain.NewClosedAlert(key, old[key]))
	}

	return alerts, next, nil
}
