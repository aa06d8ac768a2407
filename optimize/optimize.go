// Package optimize sweeps a 2D grid of (fast, slow) moving-average periods,
// running one independent backtest per combination and aggregating each
// run's statistics into a KPI table.
package optimize

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quantbench/smacross/backtest"
	"github.com/quantbench/smacross/indicators"
	"github.com/quantbench/smacross/journal"
	"github.com/quantbench/smacross/logging"
	"github.com/quantbench/smacross/market"
	"github.com/quantbench/smacross/sim"
	"github.com/quantbench/smacross/strategy"
)

// ParamSet is one grid cell. Fast < Slow is guaranteed by the grid
// generator, not re-validated inside the engine.
type ParamSet struct {
	Fast int
	Slow int
}

// Sweep runs the full grid over one shared, read-only bar series.
type Sweep struct {
	Series *market.Series

	InitialCash    float64
	CommissionRate float64
	SizingFraction float64

	FastFrom, FastTo int // inclusive bounds for the fast period
	SlowFrom, SlowTo int // inclusive bounds for the slow period

	// Workers bounds concurrent runs; <= 0 means run everything serially.
	Workers int
}

// Grid enumerates fast in [FastFrom, FastTo] and slow in [SlowFrom, SlowTo],
// keeping only fast < slow pairs.
func (s *Sweep) Grid() []ParamSet {
	var grid []ParamSet
	for fast := s.FastFrom; fast <= s.FastTo; fast++ {
		for slow := s.SlowFrom; slow <= s.SlowTo; slow++ {
			if fast < slow {
				grid = append(grid, ParamSet{Fast: fast, Slow: slow})
			}
		}
	}
	return grid
}

// Run executes every grid cell and returns one KPI row per cell, sorted by
// (fast, slow). Cells run concurrently up to Workers at a time; each owns a
// private broker, indicators and runner, and only the results slice is
// shared. A cell that never trades yields NaN ratio fields, never an error.
func (s *Sweep) Run(ctx context.Context) ([]journal.KPIRow, error) {
	grid := s.Grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("optimize: empty parameter grid (fast %d-%d, slow %d-%d)",
			s.FastFrom, s.FastTo, s.SlowFrom, s.SlowTo)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make(chan journal.KPIRow, len(grid))
	errs := make(chan error, len(grid))
	semaphore := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for _, ps := range grid {
		wg.Add(1)
		go func(ps ParamSet) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res, err := s.runCell(ctx, ps)
			if err != nil {
				errs <- fmt.Errorf("optimize: cell (%d,%d): %w", ps.Fast, ps.Slow, err)
				return
			}
			results <- Aggregate(ps, res)
		}(ps)
	}
	wg.Wait()
	close(results)
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}

	rows := make([]journal.KPIRow, 0, len(grid))
	for row := range results {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Fast != rows[j].Fast {
			return rows[i].Fast < rows[j].Fast
		}
		return rows[i].Slow < rows[j].Slow
	})
	return rows, nil
}

// runCell runs one independent backtest. The quiet driver uses simple MAs,
// no stop-loss and no logging; per-bar output across hundreds of runs would
// be prohibitive.
func (s *Sweep) runCell(ctx context.Context, ps ParamSet) (backtest.Result, error) {
	broker := sim.NewBroker(s.InitialCash, s.CommissionRate, s.SizingFraction)
	cross := indicators.NewCrossover(
		indicators.NewSimpleMA(ps.Fast),
		indicators.NewSimpleMA(ps.Slow),
	)
	roc := indicators.NewRateOfChange(1)

	runner := backtest.New(s.Series, broker, strategy.SMACrossQuiet{}, cross, roc,
		journal.Discard{}, logging.Discard())
	return runner.Run(ctx)
}
