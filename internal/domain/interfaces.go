package domain

import "context"

// PriceProvider returns the latest traded price for an exchange pair.
type PriceProvider interface {
	GetCurrentPrice(ctx context.Context, pair string) (float64, error)
}

// LiquidationSource supplies raw liquidation events for a timeframe.
type LiquidationSource interface {
	FetchLiquidations(ctx context.Context, symbol string, tf Timeframe) ([]LiquidationEvent, error)
}

// UserDirectory stores dashboard accounts.
type UserDirectory interface {
	CreateUser(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	SetFavorite(ctx context.Context, id, symbol string) error
}

// InsightRepository keeps a history of computed heatmap insights.
type InsightRepository interface {
	SaveInsight(ctx context.Context, rec *InsightRecord) error
	ListInsights(ctx context.Context, symbol string, limit int) ([]*InsightRecord, error)
}
