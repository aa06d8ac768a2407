package backtest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbench/smacross/indicators"
	"github.com/quantbench/smacross/journal"
	"github.com/quantbench/smacross/logging"
	"github.com/quantbench/smacross/market"
	"github.com/quantbench/smacross/sim"
	"github.com/quantbench/smacross/strategy"
)

func seriesFromCloses(t *testing.T, closes ...float64) *market.Series {
	t.Helper()
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  baseTime.Add(time.Duration(i) * time.Hour),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	s, err := market.NewSeries("TEST_USD", "1h", bars)
	require.NoError(t, err)
	return s
}

func newRunner(series *market.Series, broker *sim.Broker, driver strategy.Driver, fast, slow int, jnl journal.Journal) *Runner {
	cross := indicators.NewCrossover(
		indicators.NewSimpleMA(fast),
		indicators.NewSimpleMA(slow),
	)
	return New(series, broker, driver, cross, indicators.NewRateOfChange(1), jnl, logging.Discard())
}

// A flat then strictly rising series triggers exactly one buy and no sell;
// the position stays open and the end value marks it at the last close.
func TestRunnerRisingSeries(t *testing.T) {
	series := seriesFromCloses(t, 100, 100, 100, 100, 110, 120, 130, 140, 150, 160)
	broker := sim.NewBroker(10_000, 0.001, 0.99)
	driver := strategy.NewSMACross(-0.1, logging.Discard())

	res, err := newRunner(series, broker, driver, 2, 4, journal.Discard{}).Run(context.Background())
	require.NoError(t, err)

	// Cross fires on the first rising bar; the fill lands on the next
	// bar's open at 120: floor(10000*0.99/120) = 82 units.
	pos := broker.Position()
	assert.Equal(t, 82.0, pos.Units)
	assert.Equal(t, 120.0, pos.AvgEntry)

	assert.Empty(t, res.Trades, "no sell before series end")
	assert.Equal(t, 10_000.0, res.StartValue)
	assert.InDelta(t, broker.Cash()+82*160, res.EndValue, 1e-9)
	assert.Len(t, res.EquityCurve, series.Len())
}

// A V-shaped series with a single-bar drop beyond the stop threshold exits
// via the stop-loss before any bearish crossover fires.
func TestRunnerStopLossPrecedence(t *testing.T) {
	series := seriesFromCloses(t, 100, 100, 100, 100, 115, 130, 140, 120, 115, 110)
	broker := sim.NewBroker(10_000, 0.001, 0.99)
	driver := strategy.NewSMACross(-0.1, logging.Discard())

	res, err := newRunner(series, broker, driver, 2, 4, journal.Discard{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, "StopLoss", tr.Reason)
	assert.Equal(t, 130.0, tr.Entry, "filled on the bar after the cross signal")
	assert.Equal(t, 115.0, tr.Exit, "filled on the bar after the stop signal")
	assert.Less(t, tr.PnL, 0.0)
	assert.Equal(t, 0, res.Wins)
	assert.Equal(t, 1, res.Losses)
	assert.True(t, broker.Position().Flat())
}

// An unaffordable fill surfaces as Margin: no settlement and the run
// continues flat instead of aborting.
func TestRunnerMarginContinues(t *testing.T) {
	series := seriesFromCloses(t, 100, 100, 100, 100, 110, 120, 130, 140)
	// Full sizing at the fill price of 120: 100 units cost 12012 with
	// commission, more than the 12000 available.
	broker := sim.NewBroker(12_000, 0.001, 1.0)
	driver := strategy.NewSMACross(-0.1, logging.Discard())

	res, err := newRunner(series, broker, driver, 2, 4, journal.Discard{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.True(t, broker.Position().Flat())
	assert.Equal(t, 12_000.0, broker.Cash())
	assert.Equal(t, res.StartValue, res.EndValue)
}

// A signal on the last bar has no fill bar left; the pending order is
// canceled rather than executed at the signal price.
func TestRunnerCancelsPendingOrderAtEnd(t *testing.T) {
	series := seriesFromCloses(t, 100, 100, 100, 100, 150)
	broker := sim.NewBroker(10_000, 0.001, 0.99)

	res, err := newRunner(series, broker, strategy.SMACrossQuiet{}, 2, 4, journal.Discard{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.True(t, broker.Position().Flat())
	assert.Equal(t, 10_000.0, broker.Cash())
}

// The quiet driver has no stop-loss branch: the same V shape exits later,
// on the bearish cross.
func TestRunnerQuietVariantExitsOnCross(t *testing.T) {
	series := seriesFromCloses(t, 100, 100, 100, 100, 115, 130, 140, 120, 115, 110, 105, 100)
	broker := sim.NewBroker(10_000, 0.001, 0.99)

	res, err := newRunner(series, broker, strategy.SMACrossQuiet{}, 2, 4, journal.Discard{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, "BearCross", res.Trades[0].Reason)
	assert.True(t, broker.Position().Flat())
}

func TestRunnerJournalsTradesAndEquity(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	jnl, err := journal.NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	series := seriesFromCloses(t, 100, 100, 100, 100, 115, 130, 140, 120, 115, 110)
	broker := sim.NewBroker(10_000, 0.001, 0.99)
	driver := strategy.NewSMACross(-0.1, logging.Discard())

	_, err = newRunner(series, broker, driver, 2, 4, jnl).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, jnl.Close())

	trades := readCSV(t, tradesPath)
	assert.Len(t, trades, 2, "header plus one trade")
	assert.Equal(t, "StopLoss", trades[1][8])

	equity := readCSV(t, equityPath)
	assert.Len(t, equity, series.Len()+1, "header plus one snapshot per bar")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
