package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/format"
)

const SummaryFailureMessage = "Failed to load liquidation data. Please try again."

type HeatmapConfig struct {
	PriceSteps       int
	TimeSteps        int
	DefaultSymbol    string
	DefaultTimeframe domain.Timeframe
	DefaultView      domain.ViewMode
	SummaryTimeframe domain.Timeframe
	NoticeTTL        time.Duration
	// MaxAge bounds how long a cached grid may be served before it is rebuilt.
	MaxAge time.Duration
}

func DefaultHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{
		PriceSteps:       20,
		TimeSteps:        24,
		DefaultSymbol:    "BTC",
		DefaultTimeframe: domain.Timeframe4h,
		DefaultView:      domain.ViewCombined,
		SummaryTimeframe: domain.Timeframe24h,
		NoticeTTL:        5 * time.Second,
		MaxAge:           5 * time.Second,
	}
}

// HeatmapService turns a Session into render-ready snapshots. It keeps the most
// recent grid per symbol and timeframe so a view change recolors existing data
// instead of fabricating new numbers.
type HeatmapService struct {
	cfg      HeatmapConfig
	prices   *PriceService
	synth    *GridSynthesizer
	feed     domain.LiquidationSource
	insights domain.InsightRepository
	logger   *zap.Logger
	timeNow  func() time.Time

	mu          sync.Mutex
	grids       map[string]*HeatmapSnapshot
	lastSummary map[string]*SummarySnapshot
}

func NewHeatmapService(
	cfg HeatmapConfig,
	prices *PriceService,
	synth *GridSynthesizer,
	feed domain.LiquidationSource,
	insights domain.InsightRepository,
	logger *zap.Logger,
) *HeatmapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeatmapService{
		cfg:         cfg,
		prices:      prices,
		synth:       synth,
		feed:        feed,
		insights:    insights,
		logger:      logger,
		timeNow:     time.Now,
		grids:       make(map[string]*HeatmapSnapshot),
		lastSummary: make(map[string]*SummarySnapshot),
	}
}

func (s *HeatmapService) Config() HeatmapConfig {
	return s.cfg
}

// ResolveSession fills empty selections with defaults. A logged-in user's
// favorite asset wins over the configured default symbol.
func (s *HeatmapService) ResolveSession(user *domain.User, symbol, timeframe, view string) (domain.Session, error) {
	sess := domain.Session{
		Symbol:    s.cfg.DefaultSymbol,
		Timeframe: s.cfg.DefaultTimeframe,
		View:      s.cfg.DefaultView,
	}
	if user != nil && s.prices.Has(user.FavoriteCrypto) {
		sess.Symbol = strings.ToUpper(user.FavoriteCrypto)
	}

	if symbol != "" {
		if !s.prices.Has(symbol) {
			return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
		}
		sess.Symbol = strings.ToUpper(symbol)
	}
	if timeframe != "" {
		tf, err := domain.ParseTimeframe(timeframe)
		if err != nil {
			return domain.Session{}, err
		}
		sess.Timeframe = tf
	}
	if view != "" {
		v, err := domain.ParseViewMode(view)
		if err != nil {
			return domain.Session{}, err
		}
		sess.View = v
	}
	return sess, nil
}

func gridKey(sess domain.Session) string {
	return sess.Symbol + "|" + string(sess.Timeframe)
}

// Heatmap synthesizes a fresh grid for the session and records its insights.
func (s *HeatmapService) Heatmap(ctx context.Context, sess domain.Session) (*HeatmapSnapshot, error) {
	pr, err := s.prices.Range(sess.Symbol)
	if err != nil {
		return nil, err
	}

	grid, err := s.synth.Synthesize(s.cfg.PriceSteps, s.cfg.TimeSteps, pr, sess.Timeframe)
	if err != nil {
		return nil, err
	}

	snap := s.render(sess, pr, grid)

	s.mu.Lock()
	s.grids[gridKey(sess)] = snap
	s.mu.Unlock()

	s.recordInsights(ctx, snap)
	return snap, nil
}

// View returns the latest grid for the session's symbol and timeframe colored
// for its view mode. A missing or expired grid is rebuilt on a fresh price.
func (s *HeatmapService) View(ctx context.Context, sess domain.Session) (*HeatmapSnapshot, error) {
	s.mu.Lock()
	cached := s.grids[gridKey(sess)]
	s.mu.Unlock()

	if cached == nil || s.expired(cached) {
		return s.Reload(ctx, sess)
	}
	if cached.Session.View == sess.View {
		return cached, nil
	}
	return s.render(sess, cached.Range, cached.grid), nil
}

func (s *HeatmapService) expired(snap *HeatmapSnapshot) bool {
	return s.cfg.MaxAge > 0 && s.timeNow().Sub(snap.GeneratedAt) >= s.cfg.MaxAge
}

// Reload fetches the live price for the session's symbol, then builds a new grid.
func (s *HeatmapService) Reload(ctx context.Context, sess domain.Session) (*HeatmapSnapshot, error) {
	if _, err := s.prices.Refresh(ctx, sess.Symbol); err != nil {
		return nil, err
	}
	return s.Heatmap(ctx, sess)
}

// Switch moves a viewer from one selection to another. A new symbol re-prices
// and rebuilds, a new timeframe rebuilds, and a view change only recolors.
func (s *HeatmapService) Switch(ctx context.Context, from, to domain.Session) (*HeatmapSnapshot, error) {
	switch {
	case from.Symbol != to.Symbol:
		return s.Reload(ctx, to)
	case from.Timeframe != to.Timeframe:
		return s.Heatmap(ctx, to)
	default:
		return s.View(ctx, to)
	}
}

func (s *HeatmapService) render(sess domain.Session, pr domain.PriceRange, grid domain.Grid) *HeatmapSnapshot {
	now := s.timeNow()
	levels, ins := Aggregate(grid, sess.View, sess.Timeframe)
	prefix := sess.View.ClassPrefix()

	cells := make([][]HeatmapCell, len(grid))
	for r, row := range grid {
		cells[r] = make([]HeatmapCell, len(row))
		for c, cell := range row {
			minutesAgo := int(math.Floor(now.Sub(cell.Timestamp).Minutes()))
			cells[r][c] = HeatmapCell{
				Row:         r,
				Col:         c,
				Price:       cell.Price,
				LongVolume:  cell.LongVolume,
				ShortVolume: cell.ShortVolume,
				TotalVolume: cell.TotalVolume,
				Timestamp:   cell.Timestamp.UnixMilli(),
				Intensity:   levels[r][c],
				Class:       fmt.Sprintf("%s-intensity-%d", prefix, levels[r][c]),
				Tooltip: CellTooltip{
					Time:  format.MinutesAgo(minutesAgo),
					Price: format.PriceDetail(cell.Price),
					Long:  "$" + format.CompactNumber(cell.LongVolume),
					Short: "$" + format.CompactNumber(cell.ShortVolume),
					Total: "$" + format.CompactNumber(cell.TotalVolume),
				},
			}
		}
	}

	return &HeatmapSnapshot{
		ID:           uuid.NewString(),
		Session:      sess,
		Range:        pr,
		CurrentPrice: format.PriceDetail(pr.Current),
		Rows:         grid.Rows(),
		Cols:         grid.Cols(),
		Cells:        cells,
		PriceAxis:    format.PriceAxisLabels(pr, grid.Rows()),
		TimeAxis:     format.TimeAxisLabels(sess.Timeframe, grid.Cols()),
		Insights: InsightsView{
			AggregateInsights: ins,
			TotalText:         "$" + format.CompactNumber(ins.TotalVolume),
			HotZoneText:       format.PriceLabel(ins.HotZonePrice),
			RatioText:         format.Ratio(ins.LongShortRatio),
			PeakText:          format.MinutesAgo(ins.PeakTimeBucketOffset),
		},
		GeneratedAt: now,
		grid:        grid,
	}
}

func (s *HeatmapService) recordInsights(ctx context.Context, snap *HeatmapSnapshot) {
	if s.insights == nil {
		return
	}
	rec := &domain.InsightRecord{
		Symbol:         snap.Session.Symbol,
		Timeframe:      string(snap.Session.Timeframe),
		TotalVolume:    snap.Insights.TotalVolume,
		HotZonePrice:   snap.Insights.HotZonePrice,
		LongShortRatio: snap.Insights.RatioText,
		PeakMinutesAgo: snap.Insights.PeakTimeBucketOffset,
		CurrentPrice:   snap.Range.Current,
		CreatedAt:      snap.GeneratedAt,
	}
	if err := s.insights.SaveInsight(ctx, rec); err != nil {
		s.logger.Error("Failed to save insights", zap.String("symbol", rec.Symbol), zap.Error(err))
	}
}

func (s *HeatmapService) InsightHistory(ctx context.Context, symbol string, limit int) ([]*domain.InsightRecord, error) {
	if !s.prices.Has(symbol) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	if s.insights == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.insights.ListInsights(ctx, strings.ToUpper(symbol), limit)
}

// Summary loads liquidation events and compares the two sides. When the feed
// fails the previous good summary for the symbol is returned marked stale with a
// notice; the error surfaces only if there is nothing to fall back to.
func (s *HeatmapService) Summary(ctx context.Context, symbol string, tf domain.Timeframe) (*SummarySnapshot, error) {
	if symbol == "" {
		symbol = s.cfg.DefaultSymbol
	}
	if !s.prices.Has(symbol) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	sym := strings.ToUpper(symbol)
	if tf == "" {
		tf = s.cfg.SummaryTimeframe
	}

	events, err := s.feed.FetchLiquidations(ctx, sym, tf)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warn("Liquidation feed failed", zap.String("symbol", sym), zap.String("timeframe", string(tf)), zap.Error(err))

		s.mu.Lock()
		last := s.lastSummary[sym]
		s.mu.Unlock()
		if last == nil {
			return nil, err
		}

		stale := *last
		stale.Stale = true
		stale.Notice = &Notice{
			Message:        SummaryFailureMessage,
			DismissAfterMs: s.cfg.NoticeTTL.Milliseconds(),
		}
		return &stale, nil
	}

	totals := AggregateSides(events)
	snap := &SummarySnapshot{
		Symbol:         sym,
		Timeframe:      tf,
		SideTotals:     totals,
		Pressure:       totals.Pressure(),
		LongText:       format.Currency(totals.LongTotal),
		ShortText:      format.Currency(totals.ShortTotal),
		PercentageText: format.Percentage(totals.PercentageDiff),
		EventCount:     len(events),
		GeneratedAt:    s.timeNow(),
	}

	s.mu.Lock()
	s.lastSummary[sym] = snap
	s.mu.Unlock()
	return snap, nil
}
