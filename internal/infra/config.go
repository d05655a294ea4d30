package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	LiquidityModelInfinite    = "infinite"
	LiquidityModelVolumeShare = "volume_share"
)

// Config holds everything a backtest run is parameterized by. Loaded from
// YAML, then overridden with environment variables where they are set.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Backtest struct {
		InitialBalances map[string]decimal.Decimal `yaml:"initial_balances"`

		Liquidity struct {
			Model          string          `yaml:"model"` // "infinite" or "volume_share"
			VolumeLimitPct decimal.Decimal `yaml:"volume_limit_pct"`
			PriceImpactPct decimal.Decimal `yaml:"price_impact_pct"`
		} `yaml:"liquidity"`

		Fees struct {
			Percentage decimal.Decimal `yaml:"percentage"`
			Minimum    decimal.Decimal `yaml:"minimum"`
		} `yaml:"fees"`
	} `yaml:"backtest"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	hundred := decimal.NewFromInt(100)

	for symbol, amount := range c.Backtest.InitialBalances {
		if amount.IsNegative() {
			return fmt.Errorf("negative initial balance for %s: %s", symbol, amount)
		}
	}

	switch c.Backtest.Liquidity.Model {
	case LiquidityModelInfinite:
	case LiquidityModelVolumeShare:
		limit := c.Backtest.Liquidity.VolumeLimitPct
		if limit.IsNegative() || limit.GreaterThan(hundred) {
			return fmt.Errorf("volume limit must be within [0, 100], got %s", limit)
		}
		if c.Backtest.Liquidity.PriceImpactPct.IsNegative() {
			return fmt.Errorf("price impact must be non-negative, got %s", c.Backtest.Liquidity.PriceImpactPct)
		}
	default:
		return fmt.Errorf("unknown liquidity model: %q", c.Backtest.Liquidity.Model)
	}

	pct := c.Backtest.Fees.Percentage
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("fee percentage must be within [0, 100], got %s", pct)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal path is required when the journal is enabled")
	}

	return nil
}

// overrideWithEnv overrides configuration values from the environment.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("BACKTEST_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}
	if level := os.Getenv("BACKTEST_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
