package domain

import "math"

type RatioKind string

const (
	RatioFinite    RatioKind = "finite"
	RatioInfinite  RatioKind = "infinite"
	RatioUndefined RatioKind = "undefined"
)

// Ratio is a division result that never holds Inf or NaN.
type Ratio struct {
	Kind  RatioKind `json:"kind"`
	Value float64   `json:"value"`
}

func NewRatio(numerator, denominator float64) Ratio {
	switch {
	case denominator != 0:
		v := numerator / denominator
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Ratio{Kind: RatioUndefined}
		}
		return Ratio{Kind: RatioFinite, Value: v}
	case numerator == 0:
		return Ratio{Kind: RatioUndefined}
	default:
		return Ratio{Kind: RatioInfinite}
	}
}

func (r Ratio) IsFinite() bool {
	return r.Kind == RatioFinite
}

// AggregateInsights summarizes one heatmap grid.
type AggregateInsights struct {
	TotalVolume          float64 `json:"total_volume"`
	TotalLongs           float64 `json:"total_longs"`
	TotalShorts          float64 `json:"total_shorts"`
	HotZonePrice         float64 `json:"hot_zone_price"`
	LongShortRatio       Ratio   `json:"long_short_ratio"`
	PeakTimeBucket       int     `json:"peak_time_bucket"`
	PeakTimeBucketOffset int     `json:"peak_time_bucket_offset"` // minutes ago
}

type Pressure string

const (
	PressureBearish Pressure = "bearish"
	PressureBullish Pressure = "bullish"
	PressureNeutral Pressure = "neutral"
)

// SideTotals compares long and short liquidation volume.
// PercentageDiff > 0 means longs dominate, which reads as bearish pressure.
type SideTotals struct {
	LongTotal      float64 `json:"long_total"`
	ShortTotal     float64 `json:"short_total"`
	PercentageDiff float64 `json:"percentage_diff"`
}

func (s SideTotals) Pressure() Pressure {
	switch {
	case s.PercentageDiff > 0:
		return PressureBearish
	case s.PercentageDiff < 0:
		return PressureBullish
	default:
		return PressureNeutral
	}
}
