package domain

import "time"

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// LiquidationEvent is one simulated forced close of a leveraged position.
type LiquidationEvent struct {
	Symbol    string  `json:"symbol"`
	Side      Side    `json:"side"`
	VolumeUSD float64 `json:"volume_usd"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// GridCell aggregates liquidations for one (price bucket, time bucket) pair.
type GridCell struct {
	Price       float64   `json:"price"`
	LongVolume  float64   `json:"long_volume"`
	ShortVolume float64   `json:"short_volume"`
	TotalVolume float64   `json:"total_volume"`
	Timestamp   time.Time `json:"timestamp"`
}

// Grid is indexed [row][col]. Rows run from the highest price down, col 0 is the
// most recent bucket.
type Grid [][]GridCell

func (g Grid) Rows() int { return len(g) }

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Volume returns the volume a view mode colors by.
func (c GridCell) Volume(view ViewMode) float64 {
	switch view {
	case ViewLongs:
		return c.LongVolume
	case ViewShorts:
		return c.ShortVolume
	default:
		return c.TotalVolume
	}
}
