// Package backtest drives a single bar-by-bar simulation: indicators,
// strategy evaluation, order resolution and trade collection.
package backtest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/quantbench/smacross/indicators"
	"github.com/quantbench/smacross/journal"
	"github.com/quantbench/smacross/market"
	"github.com/quantbench/smacross/sim"
	"github.com/quantbench/smacross/strategy"
)

// Runner executes one strategy over one bar series. It owns a private
// broker, private indicators and a single in-flight order slot, so every
// sweep cell can run a Runner concurrently without shared state.
type Runner struct {
	series *market.Series
	broker *sim.Broker
	driver strategy.Driver

	cross *indicators.Crossover
	roc   *indicators.RateOfChange

	journal journal.Journal
	log     *logrus.Logger

	order     *sim.Order // at most one non-terminal order
	openTime  int        // bar index of the last completed buy, -1 when flat
	trades    []Trade
	equity    []float64
	entryCost float64 // cash spent on the open position, incl. commission
}

// New creates a Runner. journal and log may not be nil; use
// journal.Discard{} and logging.Discard() for silent runs.
func New(series *market.Series, broker *sim.Broker, driver strategy.Driver,
	cross *indicators.Crossover, roc *indicators.RateOfChange,
	jnl journal.Journal, log *logrus.Logger,
) *Runner {
	return &Runner{
		series:   series,
		broker:   broker,
		driver:   driver,
		cross:    cross,
		roc:      roc,
		journal:  jnl,
		log:      log,
		openTime: -1,
	}
}

// Run walks the series in order. For each bar it first fills any order
// accepted on a previous bar at this bar's open (one bar of latency, no
// look-ahead), then advances the indicators on this bar, then evaluates the
// strategy and submits at most one new intent.
//
// At series end an open position is left unliquidated: EndValue marks it at
// the last close instead of closing it. A still-pending order is canceled.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.series.Len() == 0 {
		return Result{}, fmt.Errorf("backtest: %w", market.ErrDataGap)
	}

	startValue := r.broker.Cash()
	r.equity = make([]float64, 0, r.series.Len())

	for i, bar := range r.series.Bars {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if r.order != nil && r.order.Status == sim.Accepted {
			if err := r.resolveOrder(bar, i); err != nil {
				return Result{}, err
			}
		}

		r.cross.Update(bar)
		r.roc.Update(bar)

		snap := strategy.Snapshot{
			Time:      bar.Time,
			Close:     bar.Close,
			Cross:     r.cross.Signal(),
			ROC:       r.roc.Value(),
			ROCReady:  r.roc.Ready(),
			Holding:   !r.broker.Position().Flat(),
			OrderOpen: r.order != nil && !r.order.Status.Terminal(),
		}

		intent := r.driver.Evaluate(snap)
		if intent.Action != strategy.Hold && !snap.OrderOpen {
			r.submit(intent)
		}

		mark := r.broker.Value(bar.Close)
		r.equity = append(r.equity, mark)
		if err := r.journal.RecordEquity(journal.EquitySnapshot{
			Time:   bar.Time,
			Cash:   r.broker.Cash(),
			Equity: mark,
		}); err != nil {
			return Result{}, fmt.Errorf("backtest: record equity: %w", err)
		}
	}

	// An intent from the last bar never gets a fill bar.
	if r.order != nil && !r.order.Status.Terminal() {
		if err := r.order.Transition(sim.Canceled); err != nil {
			return Result{}, err
		}
		r.log.WithField("order", r.order.ID).Info("order canceled at end of data")
		r.order = nil
	}

	res := Result{
		StartValue:  startValue,
		EndValue:    r.broker.Value(r.series.Last().Close),
		AvgReturn:   avgLogReturn(r.equity),
		MaxDrawdown: maxDrawdown(r.equity),
		Trades:      r.trades,
		EquityCurve: r.equity,
	}
	for _, t := range r.trades {
		if t.PnL > 0 {
			res.Wins++
		} else {
			res.Losses++
		}
	}
	return res, nil
}

// submit moves a fresh order through Created -> Submitted -> Accepted; it
// fills on the next bar.
func (r *Runner) submit(intent strategy.Intent) {
	side := sim.Buy
	if intent.Action == strategy.Sell {
		side = sim.Sell
	}
	o := sim.NewOrder(side, intent.Reason)
	// Transitions from Created through Accepted cannot fail.
	_ = o.Transition(sim.Submitted)
	_ = o.Transition(sim.Accepted)
	r.order = o
}

// resolveOrder executes the in-flight order at bar's open and clears the
// slot. A completed sell against an open long records a Trade.
func (r *Runner) resolveOrder(bar market.Bar, barIdx int) error {
	o := r.order
	posBefore := r.broker.Position()
	cashBefore := r.broker.Cash()

	status, err := r.broker.Execute(o, bar.Open)
	if err != nil {
		return fmt.Errorf("backtest: execute order %s: %w", o.ID, err)
	}

	switch status {
	case sim.Completed:
		if o.Side == sim.Buy {
			r.log.WithField("price", o.FillPrice).Info("BUY EXECUTED")
			r.openTime = barIdx
			r.entryCost = cashBefore - r.broker.Cash()
		} else {
			r.log.WithField("price", o.FillPrice).Info("SELL EXECUTED")
			proceeds := r.broker.Cash() - cashBefore
			t := Trade{
				EntryTime: r.series.Bars[r.openTime].Time,
				ExitTime:  bar.Time,
				Entry:     posBefore.AvgEntry,
				Exit:      o.FillPrice,
				Units:     o.Units,
				PnL:       proceeds - r.entryCost,
				Reason:    o.Reason,
			}
			r.trades = append(r.trades, t)
			r.openTime = -1
			r.entryCost = 0

			if err := r.journal.RecordTrade(journal.TradeRecord{
				TradeID:    o.ID,
				Symbol:     r.series.Symbol,
				Units:      t.Units,
				EntryPrice: t.Entry,
				ExitPrice:  t.Exit,
				OpenTime:   t.EntryTime,
				CloseTime:  t.ExitTime,
				RealizedPL: t.PnL,
				Reason:     t.Reason,
			}); err != nil {
				return fmt.Errorf("backtest: record trade: %w", err)
			}
		}

	default:
		// Canceled / Margin / Rejected: no settlement, run continues flat.
		r.log.WithFields(logrus.Fields{
			"order":  o.ID,
			"side":   o.Side.String(),
			"status": status.String(),
		}).Warn("order not executed")
	}

	r.order = nil
	return nil
}
