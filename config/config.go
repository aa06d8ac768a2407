// Package config defines the configuration surface for single runs and
// parameter sweeps. Files may be YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantbench/smacross/logging"
)

const timeLayout = "2006-01-02 15:04:05"

// Config is the complete run configuration. There is no process-wide mutable
// state: the loaded struct is passed into the runner and optimizer at
// construction.
type Config struct {
	Paths    PathsConfig    `json:"paths" yaml:"paths"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Sweep    SweepConfig    `json:"sweep" yaml:"sweep"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Logging  logging.Config `json:"logging" yaml:"logging"`
}

// PathsConfig locates data, log and report directories.
type PathsConfig struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	LogDir    string `json:"log_dir" yaml:"log_dir"`
	ReportDir string `json:"report_dir" yaml:"report_dir"`
}

// DataConfig selects the bar series.
type DataConfig struct {
	Symbol    string `json:"symbol" yaml:"symbol"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`
	From      string `json:"from" yaml:"from"` // "2006-01-02 15:04:05", inclusive
	To        string `json:"to" yaml:"to"`     // exclusive
}

// BacktestConfig holds the simulation parameters of a single run.
type BacktestConfig struct {
	InitialCash    float64 `json:"initial_cash" yaml:"initial_cash"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SizingFraction float64 `json:"sizing_fraction" yaml:"sizing_fraction"`
	FastPeriod     int     `json:"fast_period" yaml:"fast_period"`
	SlowPeriod     int     `json:"slow_period" yaml:"slow_period"`
	StopLoss       float64 `json:"stop_loss" yaml:"stop_loss"` // ROC threshold, e.g. -0.1
}

// SweepConfig holds the optimization grid bounds (inclusive).
type SweepConfig struct {
	FastFrom int `json:"fast_from" yaml:"fast_from"`
	FastTo   int `json:"fast_to" yaml:"fast_to"`
	SlowFrom int `json:"slow_from" yaml:"slow_from"`
	SlowTo   int `json:"slow_to" yaml:"slow_to"`
	Workers  int `json:"workers" yaml:"workers"`
}

// JournalConfig selects trade/equity persistence for single runs.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns the configuration matching the reference BTC/USDT hourly
// study.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "./Data",
			LogDir:    "./Log",
			ReportDir: "./Report",
		},
		Data: DataConfig{
			Symbol:    "BTC_USDT",
			Timeframe: "1h",
			From:      "2020-01-01 00:00:00",
			To:        "2020-04-01 00:00:00",
		},
		Backtest: BacktestConfig{
			InitialCash:    10000,
			CommissionRate: 0.001,
			SizingFraction: 0.99,
			FastPeriod:     10,
			SlowPeriod:     20,
			StopLoss:       -0.1,
		},
		Sweep: SweepConfig{
			FastFrom: 5,
			FastTo:   20,
			SlowFrom: 21,
			SlowTo:   49,
			Workers:  runtime.NumCPU(),
		},
		Journal: JournalConfig{Type: "csv"},
		Logging: logging.Config{Level: "info", Output: "both"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, applied on top
// of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration to a file, YAML or JSON depending on
// the extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Range parses the configured [from, to) window. Empty bounds stay zero
// (open).
func (c *Config) Range() (from, to time.Time, err error) {
	if c.Data.From != "" {
		from, err = time.Parse(timeLayout, c.Data.From)
		if err != nil {
			return from, to, fmt.Errorf("bad data.from %q: %w", c.Data.From, err)
		}
	}
	if c.Data.To != "" {
		to, err = time.Parse(timeLayout, c.Data.To)
		if err != nil {
			return from, to, fmt.Errorf("bad data.to %q: %w", c.Data.To, err)
		}
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return from, to, fmt.Errorf("data.to %q must be after data.from %q", c.Data.To, c.Data.From)
	}
	return from, to, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if c.Data.Timeframe == "" {
		return fmt.Errorf("data.timeframe is required")
	}
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive, got %v", c.Backtest.InitialCash)
	}
	if c.Backtest.CommissionRate < 0 || c.Backtest.CommissionRate >= 1 {
		return fmt.Errorf("backtest.commission_rate must be in [0, 1), got %v", c.Backtest.CommissionRate)
	}
	if c.Backtest.SizingFraction <= 0 || c.Backtest.SizingFraction > 1 {
		return fmt.Errorf("backtest.sizing_fraction must be in (0, 1], got %v", c.Backtest.SizingFraction)
	}
	if c.Backtest.FastPeriod <= 0 || c.Backtest.SlowPeriod <= 0 {
		return fmt.Errorf("backtest periods must be positive")
	}
	if c.Backtest.FastPeriod >= c.Backtest.SlowPeriod {
		return fmt.Errorf("backtest.fast_period (%d) must be less than slow_period (%d)",
			c.Backtest.FastPeriod, c.Backtest.SlowPeriod)
	}
	if c.Sweep.FastFrom > c.Sweep.FastTo || c.Sweep.SlowFrom > c.Sweep.SlowTo {
		return fmt.Errorf("sweep bounds are inverted")
	}
	switch c.Journal.Type {
	case "", "csv", "sqlite", "none":
	default:
		return fmt.Errorf("journal.type %q not supported (csv, sqlite, none)", c.Journal.Type)
	}
	if _, _, err := c.Range(); err != nil {
		return err
	}
	return nil
}
