package polymarket

import (
	"encoding/json"
	"strconv"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string so data API
// responses work whether "size" is sent as 12.5 or "12.5".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// APIPosition represents a position row as returned by the data API's
// /positions endpoint.
type APIPosition struct {
	ConditionID string    `json:"conditionId"`
	Outcome     string    `json:"outcome"`
	Title       string    `json:"title"`
	Size        flexFloat `json:"size"`
	AvgPrice    flexFloat `json:"avgPrice"`
	CurPrice    flexFloat `json:"curPrice"`
	PercentPnL  flexFloat `json:"percentPnl"`
}

// ToDomainPosition converts an APIPosition to a domain.Position.
func (p *APIPosition) ToDomainPosition() domain.Position {
	return domain.Position{
		ConditionID: p.ConditionID,
		Outcome:     p.Outcome,
		Title:       p.Title,
		Size:        float64(p.Size),
		AvgPrice:    float64(p.AvgPrice),
		CurPrice:    float64(p.CurPrice),
		PercentPnL:  float64(p.PercentPnL),
	}
}
