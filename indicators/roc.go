package indicators

import (
	"fmt"

	"github.com/quantbench/smacross/market"
)

// RateOfChange is the streaming fractional price change over 'period' bars:
// (close[t] - close[t-period]) / close[t-period]. Not ready until period+1
// closes have been observed.
type RateOfChange struct {
	period int
	closes []float64
}

// NewRateOfChange creates a ROC indicator. A period of 1 is the plain
// bar-over-bar change used by the stop-loss rule.
func NewRateOfChange(period int) *RateOfChange {
	if period <= 0 {
		period = 1
	}
	return &RateOfChange{
		period: period,
		closes: make([]float64, 0, period+1),
	}
}

func (r *RateOfChange) Name() string {
	return fmt.Sprintf("ROC(%d)", r.period)
}

func (r *RateOfChange) Warmup() int {
	return r.period + 1
}

func (r *RateOfChange) Reset() {
	r.closes = r.closes[:0]
}

func (r *RateOfChange) Update(b market.Bar) {
	r.closes = append(r.closes, b.Close)
	if len(r.closes) > r.period+1 {
		r.closes = r.closes[1:]
	}
}

func (r *RateOfChange) Ready() bool {
	return len(r.closes) >= r.period+1
}

func (r *RateOfChange) Value() float64 {
	if !r.Ready() {
		return 0
	}
	ref := r.closes[0]
	if ref == 0 {
		return 0
	}
	return (r.closes[len(r.closes)-1] - ref) / ref
}
