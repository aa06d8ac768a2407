package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quantbench/smacross/journal"
	"github.com/quantbench/smacross/optimize"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the (fast, slow) parameter grid and write the KPI table",
	Long: `Sweep runs one independent backtest per (fast, slow) period pair
using the quiet simple-MA crossover variant and writes one KPI row per
combination to the report directory.

Example:
  smacross sweep -c simulation.yaml --workers 8`,
	RunE: runSweep,
}

var (
	sweepWorkers int
	sweepOut     string
	sweepDB      bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "concurrent runs (default from config)")
	sweepCmd.Flags().StringVarP(&sweepOut, "out", "o", "", "KPI CSV path (default <report_dir>/KPI_SMAC.csv)")
	sweepCmd.Flags().BoolVar(&sweepDB, "sqlite", false, "also record KPI rows to the SQLite journal")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sweepWorkers > 0 {
		cfg.Sweep.Workers = sweepWorkers
	}

	series, err := fetchSeries(cfg)
	if err != nil {
		return err
	}

	sweep := &optimize.Sweep{
		Series:         series,
		InitialCash:    cfg.Backtest.InitialCash,
		CommissionRate: cfg.Backtest.CommissionRate,
		SizingFraction: cfg.Backtest.SizingFraction,
		FastFrom:       cfg.Sweep.FastFrom,
		FastTo:         cfg.Sweep.FastTo,
		SlowFrom:       cfg.Sweep.SlowFrom,
		SlowTo:         cfg.Sweep.SlowTo,
		Workers:        cfg.Sweep.Workers,
	}

	fmt.Printf("Sweeping fast %d-%d x slow %d-%d over %d bars (%d combinations, %d workers)\n",
		sweep.FastFrom, sweep.FastTo, sweep.SlowFrom, sweep.SlowTo,
		series.Len(), len(sweep.Grid()), cfg.Sweep.Workers)

	rows, err := sweep.Run(context.Background())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Paths.ReportDir, 0o755); err != nil {
		return err
	}
	out := sweepOut
	if out == "" {
		out = filepath.Join(cfg.Paths.ReportDir, "KPI_SMAC.csv")
	}
	if err := optimize.WriteCSV(out, rows); err != nil {
		return fmt.Errorf("write KPI table: %w", err)
	}
	fmt.Printf("Wrote %d KPI rows to %s\n", len(rows), out)

	if sweepDB {
		dbPath := cfg.Journal.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(cfg.Paths.ReportDir, "backtest.sqlite")
		}
		db, err := journal.NewSQLite(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		for _, r := range rows {
			if err := db.RecordKPI(r); err != nil {
				return fmt.Errorf("record KPI row (%d,%d): %w", r.Fast, r.Slow, err)
			}
		}
		fmt.Printf("Recorded KPI rows to %s\n", dbPath)
	}

	return nil
}
