package domain

import (
	"fmt"
	"strconv"
)

// AlertKind classifies a detected position transition.
type AlertKind string

const (
	AlertOpened    AlertKind = "opened"
	AlertIncreased AlertKind = "increased"
	AlertDecreased AlertKind = "decreased"
	AlertClosed    AlertKind = "closed"
)

// Event returns the notification event type for the alert kind, used by the
// notifier's event filter.
func (k AlertKind) Event() string {
	return "position_" + string(k)
}

// Alert is an immutable, fully formatted alert event. Alerts are produced
// once per detected transition and are never deduplicated across cycles.
type Alert struct {
	Kind  AlertKind
	Key   string
	Title string
	Body  string
}

// fmtPrice renders a price without trailing zeros ("0.42", not "0.420000").
func fmtPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewOpenedAlert builds the alert for a position absent from the previous
// snapshot.
func NewOpenedAlert(p Position) Alert {
	return Alert{
		Kind:  AlertOpened,
		Key:   p.Key(),
		Title: "Position opened",
		Body: fmt.Sprintf("%s - %s\nSize: %.4f\nAvg price: %s\nCurrent price: %s",
			p.Title, p.Outcome, p.Size, fmtPrice(p.AvgPrice), fmtPrice(p.CurPrice)),
	}
}

// NewIncreasedAlert builds the alert for a position whose size grew
// significantly since the previous snapshot.
func NewIncreasedAlert(oldSize float64, p Position) Alert {
	return Alert{
		Kind:  AlertIncreased,
		Key:   p.Key(),
		Title: "Position increased",
		Body: fmt.Sprintf("%s - %s\n%.4f → %.4f (+%.4f)\nAvg price: %s\nPnL: %s%%",
			p.Title, p.Outcome, oldSize, p.Size, p.Size-oldSize,
			fmtPrice(p.AvgPrice), fmtPrice(p.PercentPnL)),
	}
}

// NewDecreasedAlert builds the alert for a position whose size shrank
// significantly but is still open. The delta is reported as a positive
// magnitude.
func NewDecreasedAlert(oldSize float64, p Position) Alert {
	return Alert{
		Kind:  AlertDecreased,
		Key:   p.Key(),
		Title: "Position decreased",
		Body: fmt.Sprintf("%s - %s\n%.4f → %.4f (-%.4f)\nCurrent price: %s\nPnL: %s%%",
			p.Title, p.Outcome, oldSize, p.Size, oldSize-p.Size,
			fmtPrice(p.CurPrice), fmtPrice(p.PercentPnL)),
	}
}

// NewClosedAlert builds the alert for a position that disappeared from the
// feed. Only the previous snapshot's record is available at that point.
func NewClosedAlert(key string, old PositionRecord) Alert {
	return Alert{
		Kind:  AlertClosed,
		Key:   key,
		Title: "Position closed",
		Body: fmt.Sprintf("%s - %s\n%.4f → 0",
			old.Title, old.Outcome, old.Size),
	}
}
