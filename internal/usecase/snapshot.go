package usecase

import (
	"time"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

type CellTooltip struct {
	Time  string `json:"time"`
	Price string `json:"price"`
	Long  string `json:"long"`
	Short string `json:"short"`
	Total string `json:"total"`
}

type HeatmapCell struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Price       float64     `json:"price"`
	LongVolume  float64     `json:"long_volume"`
	ShortVolume float64     `json:"short_volume"`
	TotalVolume float64     `json:"total_volume"`
	Timestamp   int64       `json:"timestamp"`
	Intensity   int         `json:"intensity"`
	Class       string      `json:"class"`
	Tooltip     CellTooltip `json:"tooltip"`
}

type InsightsView struct {
	domain.AggregateInsights
	TotalText   string `json:"total_text"`
	HotZoneText string `json:"hot_zone_text"`
	RatioText   string `json:"ratio_text"`
	PeakText    string `json:"peak_text"`
}

// HeatmapSnapshot is the complete, render-ready result of one refresh.
// It is never modified after construction.
type HeatmapSnapshot struct {
	ID           string            `json:"id"`
	Session      domain.Session    `json:"session"`
	Range        domain.PriceRange `json:"range"`
	CurrentPrice string            `json:"current_price"`
	Rows         int               `json:"rows"`
	Cols         int               `json:"cols"`
	Cells        [][]HeatmapCell   `json:"cells"`
	PriceAxis    []string          `json:"price_axis"`
	TimeAxis     []string          `json:"time_axis"`
	Insights     InsightsView      `json:"insights"`
	GeneratedAt  time.Time         `json:"generated_at"`

	grid domain.Grid
}

// Notice is a user-visible message the page hides after DismissAfterMs.
type Notice struct {
	Message        string `json:"message"`
	DismissAfterMs int64  `json:"dismiss_after_ms"`
}

type SummarySnapshot struct {
	Symbol    string           `json:"symbol"`
	Timeframe domain.Timeframe `json:"timeframe"`
	domain.SideTotals
	Pressure       domain.Pressure `json:"pressure"`
	LongText       string          `json:"long_text"`
	ShortText      string          `json:"short_text"`
	PercentageText string          `json:"percentage_text"`
	EventCount     int             `json:"event_count"`
	Stale          bool            `json:"stale"`
	Notice         *Notice         `json:"notice,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
