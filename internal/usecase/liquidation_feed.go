package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

const (
	minEventsPerSide  = 10
	eventCountSpread  = 20
	minEventVolume    = 100_000.0
	eventVolumeSpread = 500_000.0
	eventWindowMs     = 3_600_000.0
)

// SimulatedFeed stands in for a liquidation data API. It fabricates events with
// a configurable latency and failure rate.
type SimulatedFeed struct {
	rng         RandomSource
	timeNow     func() time.Time
	latency     time.Duration
	failureRate float64
}

func NewSimulatedFeed(rng RandomSource, latency time.Duration, failureRate float64) *SimulatedFeed {
	return &SimulatedFeed{
		rng:         defaultRandom(rng),
		timeNow:     time.Now,
		latency:     latency,
		failureRate: failureRate,
	}
}

// Generate returns 10-29 long and 10-29 short events within the last hour.
// Volumes scale with the timeframe's multiplier.
func (f *SimulatedFeed) Generate(symbol string, tf domain.Timeframe) []domain.LiquidationEvent {
	multiplier := tf.EventMultiplier()
	longCount := int(f.rng.Float64()*eventCountSpread) + minEventsPerSide
	shortCount := int(f.rng.Float64()*eventCountSpread) + minEventsPerSide
	nowMs := f.timeNow().UnixMilli()

	events := make([]domain.LiquidationEvent, 0, longCount+shortCount)
	appendSide := func(side domain.Side, n int) {
		for i := 0; i < n; i++ {
			events = append(events, domain.LiquidationEvent{
				Symbol:    symbol,
				Side:      side,
				VolumeUSD: (f.rng.Float64()*eventVolumeSpread + minEventVolume) * multiplier,
				Timestamp: nowMs - int64(f.rng.Float64()*eventWindowMs),
			})
		}
	}
	appendSide(domain.SideLong, longCount)
	appendSide(domain.SideShort, shortCount)
	return events
}

func (f *SimulatedFeed) FetchLiquidations(ctx context.Context, symbol string, tf domain.Timeframe) ([]domain.LiquidationEvent, error) {
	if f.latency > 0 {
		timer := time.NewTimer(f.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if f.failureRate > 0 && f.rng.Float64() < f.failureRate {
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, tf, domain.ErrSimulatedOutage)
	}
	return f.Generate(symbol, tf), nil
}
