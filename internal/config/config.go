// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "csp-backtester/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Data    DataConfig    `mapstructure:"data"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds the simulation parameters. Every field has a
// default and can be overridden from config.toml or flags.
type EngineConfig struct {
	StartingCash       float64 `mapstructure:"starting_cash"`
	RiskFreeRate       float64 `mapstructure:"risk_free_rate"`
	TargetAbsDelta     float64 `mapstructure:"target_abs_delta"`
	TargetDTE          int     `mapstructure:"target_dte"`
	MinVolRank         float64 `mapstructure:"min_vol_rank"`
	MinYieldPer30Days  float64 `mapstructure:"min_yield_per_30_days"`
	TrailingVolWindow  int     `mapstructure:"trailing_vol_window"`
	RankLookbackDays   int     `mapstructure:"rank_lookback_days"`
	ContractMultiplier float64 `mapstructure:"contract_multiplier"`
}

// DataConfig holds price-series input and output locations.
type DataConfig struct {
	PriceDir  string `mapstructure:"price_dir"`  // per-instrument CSV files
	OutputDir string `mapstructure:"output_dir"` // trade/equity CSV output
	DBPath    string `mapstructure:"db_path"`    // optional sqlite result store
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		StartingCash:       100000,
		RiskFreeRate:       0.04,
		TargetAbsDelta:     0.20,
		TargetDTE:          30,
		MinVolRank:         0.40,
		MinYieldPer30Days:  0.005,
		TrailingVolWindow:  21,
		RankLookbackDays:   252,
		ContractMultiplier: 100,
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/csp-backtester"
	}
	return filepath.Join(home, ".config", "csp-backtester")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultEngineConfig()
	v.SetDefault("engine.starting_cash", def.StartingCash)
	v.SetDefault("engine.risk_free_rate", def.RiskFreeRate)
	v.SetDefault("engine.target_abs_delta", def.TargetAbsDelta)
	v.SetDefault("engine.target_dte", def.TargetDTE)
	v.SetDefault("engine.min_vol_rank", def.MinVolRank)
	v.SetDefault("engine.min_yield_per_30_days", def.MinYieldPer30Days)
	v.SetDefault("engine.trailing_vol_window", def.TrailingVolWindow)
	v.SetDefault("engine.rank_lookback_days", def.RankLookbackDays)
	v.SetDefault("engine.contract_multiplier", def.ContractMultiplier)

	v.SetDefault("data.price_dir", "./prices")
	v.SetDefault("data.output_dir", "./out")
	v.SetDefault("data.db_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CSPBT_PRICE_DIR"); v != "" {
		cfg.Data.PriceDir = v
	}
	if v := os.Getenv("CSPBT_OUTPUT_DIR"); v != "" {
		cfg.Data.OutputDir = v
	}
	if v := os.Getenv("CSPBT_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("CSPBT_STARTING_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.StartingCash = f
		}
	}
	if v := os.Getenv("CSPBT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	e := c.Engine
	if e.StartingCash <= 0 {
		return fmt.Errorf("%w: starting_cash must be positive", apperrors.ErrConfigInvalid)
	}
	if e.TargetAbsDelta <= 0 || e.TargetAbsDelta >= 1 {
		return fmt.Errorf("%w: target_abs_delta must be in (0, 1)", apperrors.ErrConfigInvalid)
	}
	if e.TargetDTE <= 0 {
		return fmt.Errorf("%w: target_dte must be positive", apperrors.ErrConfigInvalid)
	}
	if e.MinVolRank < 0 || e.MinVolRank > 1 {
		return fmt.Errorf("%w: min_vol_rank must be between 0 and 1", apperrors.ErrConfigInvalid)
	}
	if e.MinYieldPer30Days < 0 {
		return fmt.Errorf("%w: min_yield_per_30_days must be non-negative", apperrors.ErrConfigInvalid)
	}
	if e.TrailingVolWindow < 2 {
		return fmt.Errorf("%w: trailing_vol_window must be at least 2", apperrors.ErrConfigInvalid)
	}
	if e.RankLookbackDays < 1 {
		return fmt.Errorf("%w: rank_lookback_days must be at least 1", apperrors.ErrConfigInvalid)
	}
	if e.ContractMultiplier <= 0 {
		return fmt.Errorf("%w: contract_multiplier must be positive", apperrors.ErrConfigInvalid)
	}
	return nil
}
