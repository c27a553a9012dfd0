package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

type mockPublisher struct {
	mu        sync.Mutex
	sessions  []domain.Session
	published map[string][]*HeatmapSnapshot
}

func newMockPublisher(sessions ...domain.Session) *mockPublisher {
	return &mockPublisher{sessions: sessions, published: make(map[string][]*HeatmapSnapshot)}
}

func (m *mockPublisher) Sessions() []domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Session(nil), m.sessions...)
}

func (m *mockPublisher) Publish(sess domain.Session, snap *HeatmapSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[sess.Key()] = append(m.published[sess.Key()], snap)
}

func (m *mockPublisher) count(sess domain.Session) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published[sess.Key()])
}

func newTestWorker(provider domain.PriceProvider, pub SnapshotPublisher) (*RefreshWorker, *PriceService) {
	prices := NewPriceService(provider, testAssets(), nil, nil)
	heatmaps := NewHeatmapService(DefaultHeatmapConfig(), prices, NewGridSynthesizer(nil), &mockFeed{}, nil, nil)
	return NewRefreshWorker(prices, heatmaps, pub, time.Hour, nil), prices
}

func TestRefreshWorker_RunOncePublishesEverySession(t *testing.T) {
	btcCombined := domain.Session{Symbol: "BTC", Timeframe: domain.Timeframe4h, View: domain.ViewCombined}
	btcLongs := domain.Session{Symbol: "BTC", Timeframe: domain.Timeframe4h, View: domain.ViewLongs}
	eth := domain.Session{Symbol: "ETH", Timeframe: domain.Timeframe1h, View: domain.ViewShorts}
	pub := newMockPublisher(btcCombined, btcLongs, eth)
	provider := &mockPriceProvider{price: 50000}

	worker, prices := newTestWorker(provider, pub)
	require.True(t, worker.RunOnce(context.Background()))

	assert.Equal(t, 1, pub.count(btcCombined))
	assert.Equal(t, 1, pub.count(btcLongs))
	assert.Equal(t, 1, pub.count(eth))
	// One price fetch per symbol, not per session.
	assert.Equal(t, int32(2), provider.calls.Load())

	r, err := prices.Range("BTC")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, r.Current)

	// Both BTC views share one grid.
	a := pub.published[btcCombined.Key()][0]
	b := pub.published[btcLongs.Key()][0]
	assert.Equal(t, a.Insights.TotalVolume, b.Insights.TotalVolume)
	assert.Equal(t, "$52500", a.PriceAxis[0])
}

func TestRefreshWorker_NoSessionsNoFetch(t *testing.T) {
	provider := &mockPriceProvider{price: 1}
	worker, _ := newTestWorker(provider, newMockPublisher())
	assert.True(t, worker.RunOnce(context.Background()))
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestRefreshWorker_SkipsOverlappingTick(t *testing.T) {
	sess := domain.Session{Symbol: "BTC", Timeframe: domain.Timeframe4h, View: domain.ViewCombined}
	pub := newMockPublisher(sess)
	provider := &mockPriceProvider{price: 60000, release: make(chan struct{})}
	worker, _ := newTestWorker(provider, pub)

	done := make(chan bool)
	go func() { done <- worker.RunOnce(context.Background()) }()
	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.False(t, worker.RunOnce(context.Background()))
	assert.Equal(t, int64(1), worker.Skipped())

	close(provider.release)
	assert.True(t, <-done)
	assert.Equal(t, 1, pub.count(sess))
}

func TestRefreshWorker_StartStopsOnCancel(t *testing.T) {
	sess := domain.Session{Symbol: "SOL", Timeframe: domain.Timeframe15m, View: domain.ViewCombined}
	pub := newMockPublisher(sess)
	prices := NewPriceService(&mockPriceProvider{price: 150}, testAssets(), nil, nil)
	heatmaps := NewHeatmapService(DefaultHeatmapConfig(), prices, NewGridSynthesizer(nil), &mockFeed{}, nil, nil)
	worker := NewRefreshWorker(prices, heatmaps, pub, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	require.Eventually(t, func() bool { return pub.count(sess) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	worker.Wait()
}
