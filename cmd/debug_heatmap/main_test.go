package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

type fixedPrice float64

func (p fixedPrice) GetCurrentPrice(ctx context.Context, pair string) (float64, error) {
	return float64(p), nil
}

type stalledPrice chan struct{}

func (p stalledPrice) GetCurrentPrice(ctx context.Context, pair string) (float64, error) {
	<-p
	return 0, nil
}

func TestRun_PrintsHeatmap(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{symbol: "eth", timeframe: "1h", view: "longs", live: true}, fixedPrice(3000), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Price range: 2850.00 - 3150.00 (current 3000.00)")
	assert.Contains(t, out.String(), "ETH 1h longs")
	assert.Contains(t, out.String(), "Longs ")
}

func TestRun_RefreshFailureStops(t *testing.T) {
	stalled := make(stalledPrice)
	t.Cleanup(func() { close(stalled) })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, options{symbol: "BTC", timeframe: "4h", view: "combined", live: true}, stalled, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "refresh price")
	assert.Empty(t, out.String())
}

func TestRun_InvalidSelection(t *testing.T) {
	err := run(context.Background(), options{symbol: "DOGE", timeframe: "4h", view: "combined"}, fixedPrice(1), &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}
