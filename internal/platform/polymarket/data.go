// Package polymarket is the REST client for the Polymarket data API, which
// serves per-wallet position listings.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/poswatch/internal/domain"
)

// DataClientConfig holds the client parameters.
type DataClientConfig struct {
	// BaseURL is the data API root, e.g. "https://data-api.polymarket.com".
	BaseURL string
	// Limit caps positions per request.
	Limit int
	// SizeThreshold makes the API drop positions below this size upstream.
	SizeThreshold float64
	// Timeout bounds a single request.
	Timeout time.Duration
}

// DataClient fetches a wallet's open positions from the data API.
type DataClient struct {
	cfg        DataClientConfig
	httpClient *http.Client
}

// NewDataClient creates a new data API client. Zero-valued config fields
// fall back to the API defaults (limit 100, size threshold 1, 10s timeout).
func NewDataClient(cfg DataClientConfig) *DataClient {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.SizeThreshold <= 0 {
		cfg.SizeThreshold = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &DataClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GetPositions returns the wallet's current open positions.
func (d *DataClient) GetPositions(ctx context.Context, user string) ([]domain.Position, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(d.cfg.Limit))
	params.Set("sizeThreshold", strconv.FormatFloat(d.cfg.SizeThreshold, 'f', -1, 64))

	path := "/positions?" + params.Encode()

	body, err := d.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get positions: %w", err)
	}

	var apiPositions []APIPosition
	if err := json.Unmarshal(body, &apiPositions); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode positions: %w", err)
	}

	positions := make([]domain.Position, 0, len(apiPositions))
	for i := range apiPositions {
		positions = append(positions, apiPositions[i].ToDomainPosition())
	}

	return positions, nil
}

func (d *DataClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	return body, nil
}

// Compile-time interface check.
var _ domain.PositionFetcher = (*DataClient)(nil)
