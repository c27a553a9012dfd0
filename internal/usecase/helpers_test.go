package usecase

import (
	"sync"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// fixedRandom always returns the same value.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

// sequenceRandom cycles through vals.
type sequenceRandom struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

func (s *sequenceRandom) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func zeroGrid(rows, cols int, pr domain.PriceRange) domain.Grid {
	grid := make(domain.Grid, rows)
	for r := range grid {
		grid[r] = make([]domain.GridCell, cols)
		for c := range grid[r] {
			grid[r][c].Price = RowPrice(pr, rows, r)
		}
	}
	return grid
}

func setCell(g domain.Grid, r, c int, long, short float64) {
	g[r][c].LongVolume = long
	g[r][c].ShortVolume = short
	g[r][c].TotalVolume = long + short
}

func testAssets() []domain.Asset {
	return domain.DefaultAssets()
}
