package config

import (
	"strings"
	"time"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// Default values for optional configuration fields.
const (
	DefaultPort              = 8080
	DefaultLogLevel          = "info"
	DefaultStoragePath       = "heatmap.db"
	DefaultBinanceURL        = "https://fapi.binance.com"
	DefaultRequestsPerSecond = 5
	DefaultExchangeTimeout   = 10 * time.Second
	DefaultPriceSteps        = 20
	DefaultTimeSteps         = 24
	DefaultUpdateInterval    = 5 * time.Second
	DefaultSymbol            = "BTC"
	DefaultTimeframe         = "4h"
	DefaultView              = "combined"
	DefaultSummaryTimeframe  = "24h"
	DefaultSummaryLatency    = 500 * time.Millisecond
	DefaultNoticeTTL         = 5 * time.Second
	DefaultSessionTTL        = 24 * time.Hour
	DefaultBcryptCost        = 10
)

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}

	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = DefaultBinanceURL
	}
	if c.Exchange.RequestsPerSecond == 0 {
		c.Exchange.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = DefaultExchangeTimeout
	}

	if c.Heatmap.PriceSteps == 0 {
		c.Heatmap.PriceSteps = DefaultPriceSteps
	}
	if c.Heatmap.TimeSteps == 0 {
		c.Heatmap.TimeSteps = DefaultTimeSteps
	}
	if c.Heatmap.UpdateInterval == 0 {
		c.Heatmap.UpdateInterval = DefaultUpdateInterval
	}
	if c.Heatmap.DefaultSymbol == "" {
		c.Heatmap.DefaultSymbol = DefaultSymbol
	}
	c.Heatmap.DefaultSymbol = strings.ToUpper(strings.TrimSpace(c.Heatmap.DefaultSymbol))
	if c.Heatmap.DefaultTimeframe == "" {
		c.Heatmap.DefaultTimeframe = DefaultTimeframe
	}
	if c.Heatmap.DefaultView == "" {
		c.Heatmap.DefaultView = DefaultView
	}

	if c.Summary.DefaultTimeframe == "" {
		c.Summary.DefaultTimeframe = DefaultSummaryTimeframe
	}
	if c.Summary.Latency == 0 {
		c.Summary.Latency = DefaultSummaryLatency
	}
	if c.Summary.NoticeTTL == 0 {
		c.Summary.NoticeTTL = DefaultNoticeTTL
	}

	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = DefaultSessionTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = DefaultBcryptCost
	}

	if len(c.Assets) == 0 {
		c.Assets = domain.DefaultAssets()
	}
	for i := range c.Assets {
		c.Assets[i].Symbol = strings.ToUpper(strings.TrimSpace(c.Assets[i].Symbol))
		if c.Assets[i].Pair == "" {
			c.Assets[i].Pair = c.Assets[i].Symbol + "USDT"
		}
	}
}
