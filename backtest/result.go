package backtest

import (
	"math"
	"time"
)

// Trade is one completed round trip, recorded when a sell order completes
// against an open position. Immutable once recorded.
type Trade struct {
	EntryTime time.Time
	ExitTime  time.Time
	Entry     float64
	Exit      float64
	Units     float64
	PnL       float64 // net of commission on both legs
	Reason    string  // exit reason
}

// Result summarizes one backtest run.
type Result struct {
	StartValue  float64
	EndValue    float64 // cash + open position marked at the last close
	AvgReturn   float64 // mean per-bar log return of the equity curve
	MaxDrawdown float64 // deepest peak-to-trough decline, percent of peak
	Trades      []Trade
	EquityCurve []float64

	Wins   int
	Losses int
}

// TotalTrades returns the size of the trade ledger.
func (r Result) TotalTrades() int { return len(r.Trades) }

// avgLogReturn is the mean of ln(e[i]/e[i-1]) over the equity curve, the
// usual normalized average return.
func avgLogReturn(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	sum := 0.0
	n := 0
	for i := 1; i < len(equity); i++ {
		if equity[i-1] <= 0 || equity[i] <= 0 {
			continue
		}
		sum += math.Log(equity[i] / equity[i-1])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// maxDrawdown returns the deepest peak-to-trough decline as a percentage of
// the peak.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (peak - e) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
