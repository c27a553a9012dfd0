// Package config loads the heatmap server configuration from a YAML file,
// an optional .env file and HEATMAP_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// EnvPrefix namespaces environment overrides, e.g. HEATMAP_SERVER_PORT.
const EnvPrefix = "HEATMAP"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Heatmap  HeatmapConfig  `yaml:"heatmap"`
	Summary  SummaryConfig  `yaml:"summary"`
	Auth     AuthConfig     `yaml:"auth"`
	Assets   []domain.Asset `yaml:"assets" ignored:"true"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ExchangeConfig struct {
	BaseURL           string        `yaml:"base_url" envconfig:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

type HeatmapConfig struct {
	PriceSteps       int           `yaml:"price_steps" envconfig:"price_steps"`
	TimeSteps        int           `yaml:"time_steps" envconfig:"time_steps"`
	UpdateInterval   time.Duration `yaml:"update_interval" envconfig:"update_interval"`
	DefaultSymbol    string        `yaml:"default_symbol" envconfig:"default_symbol"`
	DefaultTimeframe string        `yaml:"default_timeframe" envconfig:"default_timeframe"`
	DefaultView      string        `yaml:"default_view" envconfig:"default_view"`
}

type SummaryConfig struct {
	DefaultTimeframe string        `yaml:"default_timeframe" envconfig:"default_timeframe"`
	Latency          time.Duration `yaml:"latency"`
	FailureRate      float64       `yaml:"failure_rate" envconfig:"failure_rate"`
	NoticeTTL        time.Duration `yaml:"notice_ttl" envconfig:"notice_ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" envconfig:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"session_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost" envconfig:"bcrypt_cost"`
}

// Load reads path, applies environment overrides and defaults, then validates.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Asset looks up a configured asset by symbol.
func (c *Config) Asset(symbol string) (domain.Asset, bool) {
	for _, a := range c.Assets {
		if strings.EqualFold(a.Symbol, symbol) {
			return a, true
		}
	}
	return domain.Asset{}, false
}
