package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quantbench/smacross/config"
)

var rootCmd = &cobra.Command{
	Use:   "smacross",
	Short: "Moving-average-crossover backtester and parameter optimizer",
	Long: `smacross replays historical OHLCV bars through a moving-average
crossover strategy and reports performance.

It provides:
  - Single verbose backtest runs with per-bar event logging
  - A 2D (fast, slow) period sweep producing one KPI row per combination
  - Trade and equity journaling to CSV or SQLite`,
}

var cfgFile string

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}

// loadConfig returns the file-backed configuration, or the defaults when no
// file was given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}
