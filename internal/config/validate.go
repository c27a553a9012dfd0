package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Exchange.RequestsPerSecond < 0 {
		return errors.New("exchange.requests_per_second must be >= 0")
	}

	if c.Heatmap.PriceSteps < 1 {
		return fmt.Errorf("heatmap.price_steps must be >= 1, got %d", c.Heatmap.PriceSteps)
	}
	if c.Heatmap.TimeSteps < 1 {
		return fmt.Errorf("heatmap.time_steps must be >= 1, got %d", c.Heatmap.TimeSteps)
	}
	if c.Heatmap.UpdateInterval < 0 {
		return errors.New("heatmap.update_interval must be positive")
	}
	if _, err := domain.ParseTimeframe(c.Heatmap.DefaultTimeframe); err != nil {
		return fmt.Errorf("heatmap.default_timeframe: %w", err)
	}
	if _, err := domain.ParseViewMode(c.Heatmap.DefaultView); err != nil {
		return fmt.Errorf("heatmap.default_view: %w", err)
	}
	if _, err := domain.ParseTimeframe(c.Summary.DefaultTimeframe); err != nil {
		return fmt.Errorf("summary.default_timeframe: %w", err)
	}
	if c.Summary.FailureRate < 0 || c.Summary.FailureRate > 1 {
		return fmt.Errorf("summary.failure_rate must be within [0, 1], got %v", c.Summary.FailureRate)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.Symbol == "" {
			return errors.New("assets: symbol is required")
		}
		sym := strings.ToUpper(a.Symbol)
		if seen[sym] {
			return fmt.Errorf("assets: duplicate symbol %s", a.Symbol)
		}
		seen[sym] = true
		r := a.InitialRange
		if r.Min <= 0 || r.Max <= r.Min {
			return fmt.Errorf("assets.%s: initial_range needs 0 < min < max", a.Symbol)
		}
		if r.Current < r.Min || r.Current > r.Max {
			return fmt.Errorf("assets.%s: initial_range.current must lie within [min, max]", a.Symbol)
		}
	}
	if !seen[strings.ToUpper(c.Heatmap.DefaultSymbol)] {
		return fmt.Errorf("heatmap.default_symbol %s is not a configured asset", c.Heatmap.DefaultSymbol)
	}
	return nil
}
