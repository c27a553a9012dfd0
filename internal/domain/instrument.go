package domain

// PriceRange bounds the heatmap's price axis for one asset.
// Min <= Current <= Max is expected but only the random walk fallback enforces it;
// a live price re-derives all three together.
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Current float64 `json:"current"`
}

func (r PriceRange) Span() float64 {
	return r.Max - r.Min
}

// Asset is a tracked symbol together with its exchange pair and seed range.
type Asset struct {
	Symbol       string     `json:"symbol" yaml:"symbol"`
	Pair         string     `json:"pair" yaml:"pair"`
	InitialRange PriceRange `json:"initial_range" yaml:"initial_range"`
}

// DefaultAssets mirrors the dashboard's built-in asset list.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: "BTC", Pair: "BTCUSDT", InitialRange: PriceRange{Min: 65000, Max: 70000, Current: 67000}},
		{Symbol: "ETH", Pair: "ETHUSDT", InitialRange: PriceRange{Min: 2400, Max: 2800, Current: 2600}},
		{Symbol: "SOL", Pair: "SOLUSDT", InitialRange: PriceRange{Min: 120, Max: 160, Current: 140}},
		{Symbol: "BNB", Pair: "BNBUSDT", InitialRange: PriceRange{Min: 580, Max: 650, Current: 612}},
	}
}
