package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrDataGap marks an unusable base dataset: an empty series or one whose
// timestamps are not strictly increasing. It is fatal before a simulation
// starts, since every parameter combination shares the same series.
var ErrDataGap = errors.New("market: empty or non-monotonic bar series")

// Series is an ordered, immutable sequence of bars for one symbol and
// timeframe. Timestamps are strictly increasing; gaps between bars are
// tolerated but duplicates are not.
type Series struct {
	Symbol    string
	Timeframe string
	Bars      []Bar
}

// NewSeries validates ordering and returns a Series. Callers must not mutate
// bars after handing them over.
func NewSeries(symbol, timeframe string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s %s", ErrDataGap, symbol, timeframe)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, fmt.Errorf("%w: bar %d (%s) not after bar %d (%s)",
				ErrDataGap, i, bars[i].Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return &Series{Symbol: symbol, Timeframe: timeframe, Bars: bars}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Slice returns the sub-series with bar times in [from, to). A zero from or
// to leaves that bound open. The underlying bars are shared, not copied.
func (s *Series) Slice(from, to time.Time) *Series {
	lo := 0
	for lo < len(s.Bars) && !from.IsZero() && s.Bars[lo].Time.Before(from) {
		lo++
	}
	hi := len(s.Bars)
	for hi > lo && !to.IsZero() && !s.Bars[hi-1].Time.Before(to) {
		hi--
	}
	return &Series{Symbol: s.Symbol, Timeframe: s.Timeframe, Bars: s.Bars[lo:hi]}
}

// First and Last panic on an empty series; NewSeries guarantees at least one
// bar.
func (s *Series) First() Bar { return s.Bars[0] }
func (s *Series) Last() Bar  { return s.Bars[len(s.Bars)-1] }
