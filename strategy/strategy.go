// Package strategy contains the per-bar decision logic that turns indicator
// readings into order intents.
package strategy

import "time"

// Action is the tagged decision a driver makes for one bar.
type Action int8

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Intent is at most one order intent per bar, with the reason that produced
// it. The reason flows through to order logs and the trade journal.
type Intent struct {
	Action Action
	Reason string
}

var hold = Intent{Action: Hold}

// Snapshot is the read-only view of the current bar a driver decides from.
// Drivers never touch indicators or broker state directly.
type Snapshot struct {
	Time  time.Time
	Close float64

	Cross    int     // +1 fast crossed above slow, -1 crossed below, 0 no cross
	ROC      float64 // bar-over-bar rate of change
	ROCReady bool

	Holding   bool // position units > 0
	OrderOpen bool // an order is in flight; no new intent may be emitted
}

// Driver evaluates one bar and returns at most one intent. Implementations
// are pure with respect to broker and indicator state.
type Driver interface {
	Name() string
	Evaluate(snap Snapshot) Intent
}
