package indicators

import (
	"fmt"

	"github.com/quantbench/smacross/market"
)

// Crossover detects the bar where a fast line changes its ordering relative
// to a slow line. It owns both lines and advances them on every Update, so
// callers must not update fast or slow separately.
//
// Signal() is +1 on the bar where fast crosses above slow, -1 where it
// crosses below, and 0 otherwise. The comparison is against the previous
// bar's ordering, so the signal never re-fires while fast simply stays on
// one side of slow.
type Crossover struct {
	fast, slow Line

	lastDiff     float64
	haveLastDiff bool
	signal       int
}

// NewCrossover creates a crossover detector over two lines. fast is expected
// to have the shorter warmup.
func NewCrossover(fast, slow Line) *Crossover {
	return &Crossover{fast: fast, slow: slow}
}

func (c *Crossover) Name() string {
	return fmt.Sprintf("Cross(%s,%s)", c.fast.Name(), c.slow.Name())
}

// Warmup is one bar beyond the slower line: a cross needs the previous
// bar's ordering as well.
func (c *Crossover) Warmup() int {
	w := c.fast.Warmup()
	if s := c.slow.Warmup(); s > w {
		w = s
	}
	return w + 1
}

func (c *Crossover) Reset() {
	c.fast.Reset()
	c.slow.Reset()
	c.lastDiff = 0
	c.haveLastDiff = false
	c.signal = 0
}

func (c *Crossover) Update(b market.Bar) {
	c.fast.Update(b)
	c.slow.Update(b)
	c.signal = 0

	if !c.fast.Ready() || !c.slow.Ready() {
		return
	}

	diff := c.fast.Value() - c.slow.Value()

	// Need a previous diff to detect a cross.
	if !c.haveLastDiff {
		c.lastDiff = diff
		c.haveLastDiff = true
		return
	}

	switch {
	case diff > 0 && c.lastDiff <= 0:
		c.signal = +1
	case diff < 0 && c.lastDiff >= 0:
		c.signal = -1
	}
	c.lastDiff = diff
}

func (c *Crossover) Ready() bool {
	return c.haveLastDiff
}

// Signal returns the cross direction for the most recent bar.
func (c *Crossover) Signal() int {
	return c.signal
}

// Fast and Slow expose the underlying lines for logging and inspection.
func (c *Crossover) Fast() Line { return c.fast }
func (c *Crossover) Slow() Line { return c.slow }
