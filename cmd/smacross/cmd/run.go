package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quantbench/smacross/backtest"
	"github.com/quantbench/smacross/config"
	"github.com/quantbench/smacross/indicators"
	"github.com/quantbench/smacross/journal"
	"github.com/quantbench/smacross/logging"
	"github.com/quantbench/smacross/market"
	"github.com/quantbench/smacross/sim"
	"github.com/quantbench/smacross/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single verbose backtest",
	Long: `Run one backtest of the smoothed-MA crossover strategy (with the
rate-of-change stop-loss) over the configured bar series. Every bar event is
logged and trades/equity are journaled per the configuration.

Example:
  smacross run -c simulation.yaml --fast 10 --slow 20`,
	RunE: runRun,
}

var (
	runFast int
	runSlow int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFast, "fast", 0, "override fast MA period")
	runCmd.Flags().IntVar(&runSlow, "slow", 0, "override slow MA period")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFast > 0 {
		cfg.Backtest.FastPeriod = runFast
	}
	if runSlow > 0 {
		cfg.Backtest.SlowPeriod = runSlow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	series, err := fetchSeries(cfg)
	if err != nil {
		return err
	}

	cfg.Logging.Directory = cfg.Paths.LogDir
	log := logging.New(cfg.Logging)

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	broker := sim.NewBroker(cfg.Backtest.InitialCash, cfg.Backtest.CommissionRate, cfg.Backtest.SizingFraction)
	cross := indicators.NewCrossover(
		indicators.NewSmoothedMA(cfg.Backtest.FastPeriod),
		indicators.NewSmoothedMA(cfg.Backtest.SlowPeriod),
	)
	roc := indicators.NewRateOfChange(1)
	driver := strategy.NewSMACross(cfg.Backtest.StopLoss, log)

	runner := backtest.New(series, broker, driver, cross, roc, jnl, log)

	fmt.Printf("Starting Portfolio Value: %.2f\n", cfg.Backtest.InitialCash)

	res, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	fmt.Printf("Final Portfolio Value: %.2f\n", res.EndValue)
	fmt.Printf("  Bars: %d  Trades: %d (%d won, %d lost)\n",
		series.Len(), res.TotalTrades(), res.Wins, res.Losses)
	fmt.Printf("  Max Drawdown: %.2f%%  Avg Return/Bar: %.6f\n", res.MaxDrawdown, res.AvgReturn)
	if !broker.Position().Flat() {
		// Open positions are marked to market, not closed; the end value
		// depends on the last close.
		fmt.Printf("  Open position at end of data: %.0f units @ %.2f (not liquidated)\n",
			broker.Position().Units, broker.Position().AvgEntry)
	}

	return nil
}

func fetchSeries(cfg *config.Config) (*market.Series, error) {
	from, to, err := cfg.Range()
	if err != nil {
		return nil, err
	}

	fetcher := &market.CSVFetcher{Dir: cfg.Paths.DataDir}
	series, err := fetcher.Fetch(cfg.Data.Symbol, cfg.Data.Timeframe, from, to)
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("no bars for %s %s in [%s, %s)",
			cfg.Data.Symbol, cfg.Data.Timeframe, cfg.Data.From, cfg.Data.To)
	}
	return series, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv", "":
		if err := os.MkdirAll(cfg.Paths.ReportDir, 0o755); err != nil {
			return nil, err
		}
		trades := cfg.Journal.TradesFile
		if trades == "" {
			trades = filepath.Join(cfg.Paths.ReportDir, "trades.csv")
		}
		equity := cfg.Journal.EquityFile
		if equity == "" {
			equity = filepath.Join(cfg.Paths.ReportDir, "equity.csv")
		}
		return journal.NewCSV(trades, equity)

	case "sqlite":
		db := cfg.Journal.DBPath
		if db == "" {
			db = filepath.Join(cfg.Paths.ReportDir, "backtest.sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(db), 0o755); err != nil {
			return nil, err
		}
		return journal.NewSQLite(db)

	case "none":
		return journal.Discard{}, nil

	default:
		return nil, fmt.Errorf("journal type %q not supported", cfg.Journal.Type)
	}
}
