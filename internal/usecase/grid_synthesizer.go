package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

const (
	baseVolumeScale = 1_000_000.0
	maxTimeDecay    = 0.5 // oldest column gets half the weight of the newest
	maxPriceDecay   = 0.3 // edge rows lose up to 30% against the center row
	minSideShare    = 0.3
)

// GridSynthesizer fabricates liquidation volumes across price and time buckets.
// Volume is biased toward the middle of the price range and toward recent buckets.
type GridSynthesizer struct {
	rng     RandomSource
	timeNow func() time.Time
}

func NewGridSynthesizer(rng RandomSource) *GridSynthesizer {
	return &GridSynthesizer{
		rng:     defaultRandom(rng),
		timeNow: time.Now,
	}
}

// RowPrice is the representative price of row r. Row 0 is r.Max, the last row r.Min.
func RowPrice(pr domain.PriceRange, rows, r int) float64 {
	if rows <= 1 {
		return pr.Max
	}
	return pr.Max - float64(r)*pr.Span()/float64(rows-1)
}

func timeFactor(col, cols int) float64 {
	return 1 - (float64(col)/float64(cols))*maxTimeDecay
}

func priceFactor(row, rows int) float64 {
	half := float64(rows) / 2
	return 1 - math.Abs(float64(row)-half)/half*maxPriceDecay
}

func (s *GridSynthesizer) sideShare() float64 {
	return minSideShare + s.rng.Float64()*(1-minSideShare)
}

// Synthesize builds a rows x cols grid for the given range and timeframe.
func (s *GridSynthesizer) Synthesize(rows, cols int, pr domain.PriceRange, tf domain.Timeframe) (domain.Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidDimensions, rows, cols)
	}

	now := s.timeNow()
	bucket := tf.BucketDuration(cols)

	grid := make(domain.Grid, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]domain.GridCell, cols)
		price := RowPrice(pr, rows, r)
		pf := priceFactor(r, rows)

		for c := 0; c < cols; c++ {
			base := s.rng.Float64() * baseVolumeScale * timeFactor(c, cols) * pf
			long := base * s.sideShare()
			short := base * s.sideShare()

			grid[r][c] = domain.GridCell{
				Price:       price,
				LongVolume:  long,
				ShortVolume: short,
				TotalVolume: long + short,
				Timestamp:   now.Add(-time.Duration(c) * bucket),
			}
		}
	}
	return grid, nil
}
