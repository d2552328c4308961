package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPositions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/positions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "0xwallet", q.Get("user"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "1", q.Get("sizeThreshold"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"conditionId":"0xabc","outcome":"Yes","title":"Will it happen?",
			 "size":12.5,"avgPrice":0.42,"curPrice":0.55,"percentPnl":30.95},
			{"conditionId":"0xdef","outcome":"No","title":"Another market",
			 "size":"3.25","avgPrice":"0.1","curPrice":"0.2","percentPnl":"100"}
		]`))
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL})
	positions, err := c.GetPositions(context.Background(), "0xwallet")
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, "0xabc", positions[0].ConditionID)
	assert.Equal(t, "Yes", positions[0].Outcome)
	assert.Equal(t, 12.5, positions[0].Size)
	assert.Equal(t, 0.42, positions[0].AvgPrice)

	// Numeric strings decode the same as numbers.
	assert.Equal(t, 3.25, positions[1].Size)
	assert.Equal(t, 100.0, positions[1].PercentPnL)
}

func TestGetPositionsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL})
	positions, err := c.GetPositions(context.Background(), "0xwallet")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestGetPositionsHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL})
	_, err := c.GetPositions(context.Background(), "0xwallet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGetPositionsBadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL})
	_, err := c.GetPositions(context.Background(), "0xwallet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode positions")
}

func TestGetPositionsContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL})
	_, err := c.GetPositions(ctx, "0xwallet")
	assert.Error(t, err)
}

func TestNewDataClientDefaults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "0.5", q.Get("sizeThreshold"))
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewDataClient(DataClientConfig{BaseURL: srv.URL, Limit: 25, SizeThreshold: 0.5})
	_, err := c.GetPositions(context.Background(), "0xwallet")
	require.NoError(t, err)
}
