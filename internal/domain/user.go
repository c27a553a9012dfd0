package domain

import "time"

type User struct {
	ID             string    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	FavoriteCrypto string    `json:"favorite_crypto" db:"favorite_crypto"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// InsightRecord is a persisted summary of one heatmap refresh.
type InsightRecord struct {
	ID             int64     `json:"id" db:"id"`
	Symbol         string    `json:"symbol" db:"symbol"`
	Timeframe      string    `json:"timeframe" db:"timeframe"`
	TotalVolume    float64   `json:"total_volume" db:"total_volume"`
	HotZonePrice   float64   `json:"hot_zone_price" db:"hot_zone_price"`
	LongShortRatio string    `json:"long_short_ratio" db:"long_short_ratio"`
	PeakMinutesAgo int       `json:"peak_minutes_ago" db:"peak_minutes_ago"`
	CurrentPrice   float64   `json:"current_price" db:"current_price"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
