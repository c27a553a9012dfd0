package domain

import (
	"fmt"
	"time"
)

type Timeframe string

const (
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe24h Timeframe = "24h"
)

var timeframeMinutes = map[Timeframe]float64{
	Timeframe15m: 15,
	Timeframe1h:  60,
	Timeframe4h:  240,
	Timeframe24h: 1440,
}

func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframeMinutes[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	return tf, nil
}

// TotalMinutes is the span the heatmap covers for this timeframe.
func (t Timeframe) TotalMinutes() float64 {
	return timeframeMinutes[t]
}

// BucketMinutes splits the timeframe into n equal time buckets.
func (t Timeframe) BucketMinutes(n int) float64 {
	if n <= 0 {
		return 0
	}
	return t.TotalMinutes() / float64(n)
}

func (t Timeframe) BucketDuration(n int) time.Duration {
	return time.Duration(t.BucketMinutes(n) * float64(time.Minute))
}

// EventMultiplier scales simulated event volumes for the summary view.
func (t Timeframe) EventMultiplier() float64 {
	switch t {
	case Timeframe1h:
		return 1
	case Timeframe4h:
		return 3
	default:
		return 8
	}
}

type ViewMode string

const (
	ViewCombined ViewMode = "combined"
	ViewLongs    ViewMode = "longs"
	ViewShorts   ViewMode = "shorts"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch v := ViewMode(s); v {
	case ViewCombined, ViewLongs, ViewShorts:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// ClassPrefix is the CSS class prefix the dashboard uses for intensity colors.
func (v ViewMode) ClassPrefix() string {
	switch v {
	case ViewLongs:
		return "long"
	case ViewShorts:
		return "short"
	default:
		return "combined"
	}
}

// Session carries the dashboard selection into each computation.
type Session struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	View      ViewMode  `json:"view"`
}

// Key identifies sessions that produce the same snapshot.
func (s Session) Key() string {
	return s.Symbol + "|" + string(s.Timeframe) + "|" + string(s.View)
}
