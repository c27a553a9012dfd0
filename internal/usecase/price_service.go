package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

const (
	liveRangeBand  = 0.05 // +-5% around the live price
	walkStepFactor = 0.02 // random walk moves at most 1% of the span either way
)

// PriceService tracks one PriceRange per asset. Refreshes for the same symbol are
// coalesced so a slow fetch is never raced by a second one.
type PriceService struct {
	provider domain.PriceProvider
	rng      RandomSource
	logger   *zap.Logger

	assets  map[string]domain.Asset
	symbols []string

	mu     sync.RWMutex
	ranges map[string]domain.PriceRange

	inflight singleflight.Group
}

func NewPriceService(provider domain.PriceProvider, assets []domain.Asset, rng RandomSource, logger *zap.Logger) *PriceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PriceService{
		provider: provider,
		rng:      defaultRandom(rng),
		logger:   logger,
		assets:   make(map[string]domain.Asset, len(assets)),
		ranges:   make(map[string]domain.PriceRange, len(assets)),
	}
	for _, a := range assets {
		sym := strings.ToUpper(a.Symbol)
		a.Symbol = sym
		if _, dup := s.assets[sym]; dup {
			continue
		}
		s.assets[sym] = a
		s.symbols = append(s.symbols, sym)
		s.ranges[sym] = a.InitialRange
	}
	return s
}

// Symbols lists tracked assets in configuration order.
func (s *PriceService) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

func (s *PriceService) Has(symbol string) bool {
	_, ok := s.assets[strings.ToUpper(symbol)]
	return ok
}

func (s *PriceService) Range(symbol string) (domain.PriceRange, error) {
	sym := strings.ToUpper(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ranges[sym]
	if !ok {
		return domain.PriceRange{}, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	return r, nil
}

// Refresh pulls the live price for symbol and re-centers its range on it.
// If the provider fails the current price takes a bounded random step instead;
// the fetch error is logged, never returned.
//
// Callers for the same symbol share one fetch. The fetch is detached from any
// single caller's context, so a caller that gives up gets ctx.Err() while the
// others still receive the fetched price.
func (s *PriceService) Refresh(ctx context.Context, symbol string) (domain.PriceRange, error) {
	sym := strings.ToUpper(symbol)
	asset, ok := s.assets[sym]
	if !ok {
		return domain.PriceRange{}, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(sym, func() (interface{}, error) {
		price, err := s.fetch(fetchCtx, asset.Pair)
		if err != nil {
			s.logger.Warn("Price fetch failed, simulating move",
				zap.String("symbol", sym), zap.String("pair", asset.Pair), zap.Error(err))
			return s.simulateMove(sym), nil
		}
		return s.applyLivePrice(sym, price), nil
	})

	select {
	case <-ctx.Done():
		return domain.PriceRange{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.PriceRange{}, res.Err
		}
		return res.Val.(domain.PriceRange), nil
	}
}

func (s *PriceService) fetch(ctx context.Context, pair string) (float64, error) {
	if s.provider == nil {
		return 0, fmt.Errorf("no price provider configured")
	}
	price, err := s.provider.GetCurrentPrice(ctx, pair)
	if err != nil {
		return 0, err
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("invalid price %v for %s", price, pair)
	}
	return price, nil
}

func (s *PriceService) applyLivePrice(sym string, price float64) domain.PriceRange {
	r := domain.PriceRange{
		Min:     price * (1 - liveRangeBand),
		Max:     price * (1 + liveRangeBand),
		Current: price,
	}
	s.mu.Lock()
	s.ranges[sym] = r
	s.mu.Unlock()
	return r
}

// simulateMove nudges Current and clamps it to the existing bounds. Min and Max
// are left as they are; they only move together with a live price.
func (s *PriceService) simulateMove(sym string) domain.PriceRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.ranges[sym]
	step := (s.rng.Float64() - 0.5) * r.Span() * walkStepFactor
	r.Current = math.Max(r.Min, math.Min(r.Max, r.Current+step))
	s.ranges[sym] = r
	return r
}
