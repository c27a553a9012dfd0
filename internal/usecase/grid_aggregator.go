package usecase

import (
	"math"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

const (
	MinIntensity = 1
	MaxIntensity = 6
)

// IntensityGrid holds the 1-6 color level of each cell, indexed like the grid.
type IntensityGrid [][]int

// IntensityLevel buckets a normalized volume in [0, 1] into a color level.
func IntensityLevel(normalized float64) int {
	switch {
	case normalized > 0.8:
		return 6
	case normalized > 0.6:
		return 5
	case normalized > 0.4:
		return 4
	case normalized > 0.25:
		return 3
	case normalized > 0.1:
		return 2
	}
	return MinIntensity
}

// Intensities normalizes the view's volume against the grid-wide maximum.
// An all-zero grid maps every cell to level 1.
func Intensities(grid domain.Grid, view domain.ViewMode) IntensityGrid {
	maxVolume := 0.0
	for _, row := range grid {
		for _, cell := range row {
			maxVolume = math.Max(maxVolume, cell.Volume(view))
		}
	}

	levels := make(IntensityGrid, len(grid))
	for r, row := range grid {
		levels[r] = make([]int, len(row))
		for c, cell := range row {
			normalized := 0.0
			if maxVolume > 0 {
				normalized = cell.Volume(view) / maxVolume
			}
			levels[r][c] = IntensityLevel(normalized)
		}
	}
	return levels
}

// Insights summarizes the grid. Totals always use the combined volume, whatever
// view is active. The hot zone is the first cell with the greatest total, so it
// is always the price of a real row.
func Insights(grid domain.Grid, tf domain.Timeframe) domain.AggregateInsights {
	var ins domain.AggregateInsights
	cols := grid.Cols()
	colVolumes := make([]float64, cols)

	hotVolume := 0.0
	hotSet := false
	for _, row := range grid {
		for c, cell := range row {
			ins.TotalVolume += cell.TotalVolume
			ins.TotalLongs += cell.LongVolume
			ins.TotalShorts += cell.ShortVolume
			if c < cols {
				colVolumes[c] += cell.TotalVolume
			}

			if !hotSet || cell.TotalVolume > hotVolume {
				hotVolume = cell.TotalVolume
				ins.HotZonePrice = cell.Price
				hotSet = true
			}
		}
	}

	peak := 0
	for c, v := range colVolumes {
		if v > colVolumes[peak] {
			peak = c
		}
	}
	ins.PeakTimeBucket = peak
	ins.PeakTimeBucketOffset = int(math.Floor(tf.BucketMinutes(cols) * float64(peak)))
	ins.LongShortRatio = domain.NewRatio(ins.TotalLongs, ins.TotalShorts)
	return ins
}

// Aggregate computes color levels for the view and the grid insights.
func Aggregate(grid domain.Grid, view domain.ViewMode, tf domain.Timeframe) (IntensityGrid, domain.AggregateInsights) {
	return Intensities(grid, view), Insights(grid, tf)
}
