// Package reconcile implements the snapshot diff engine: it compares the
// previous snapshot of open positions against a freshly fetched list,
// filters floating-point noise, and produces the cycle's alerts together
// with the next snapshot.
package reconcile

import "math"

// IsSignificant reports whether the size change from oldSize to newSize is
// large enough to alert on. Changes with an absolute difference strictly
// below threshold are treated as floating-point jitter or sub-unit
// rebalancing noise and suppressed; a difference exactly at the threshold is
// significant.
func IsSignificant(oldSize, newSize, threshold float64) bool {
	return math.Abs(newSize-oldSize) >= threshold
}
