// Package indicators provides streaming technical indicators for the
// backtest engine.
package indicators

import "github.com/quantbench/smacross/market"

// Indicator computes a single streaming value from bars. It is deterministic
// and must be updated exactly once per bar, in timestamp order; re-entrant
// updates corrupt the rolling window.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "ROC(1)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool
}

// Line is an indicator producing a float64 reading. If !Ready(), Value()
// returns 0 — callers should always check Ready().
type Line interface {
	Indicator
	Value() float64
}
