// Package sim provides the simulated broker and the order lifecycle used by
// the backtest engine.
package sim

import (
	"fmt"

	"github.com/quantbench/smacross/pkg/id"
)

// Side of an order. The engine is long-only: sells always liquidate an open
// long position.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Status is an order lifecycle state. Created, Submitted and Accepted are
// non-terminal and carry no side effects; Completed settles cash and
// position; Canceled, Margin and Rejected are terminal with no settlement.
type Status int8

const (
	Created Status = iota
	Submitted
	Accepted
	Completed
	Canceled
	Margin
	Rejected
)

var statusNames = map[Status]string{
	Created:   "Created",
	Submitted: "Submitted",
	Accepted:  "Accepted",
	Completed: "Completed",
	Canceled:  "Canceled",
	Margin:    "Margin",
	Rejected:  "Rejected",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int8(s))
}

// Terminal reports whether s is an absorbing state.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Canceled, Margin, Rejected:
		return true
	}
	return false
}

// transitions is the explicit state table. An order may only move forward
// along Created -> Submitted -> Accepted and from Accepted into exactly one
// terminal state; Canceled is additionally allowed from any non-terminal
// state (end of data).
var transitions = map[Status][]Status{
	Created:   {Submitted, Canceled},
	Submitted: {Accepted, Canceled, Rejected},
	Accepted:  {Completed, Canceled, Margin, Rejected},
}

// Order tracks one pending trade intent from creation to terminal
// resolution. At most one order is non-terminal at a time per backtest run;
// once terminal it is discarded (only completed sells leave a trade record).
type Order struct {
	ID     string
	Side   Side
	Status Status
	Reason string // the strategy reason that created the intent

	// Fill details, set on Completed.
	Units     float64
	FillPrice float64
}

// NewOrder creates an order in the Created state. Units are decided at fill
// time: buys size off portfolio value at the fill price, sells liquidate the
// whole position.
func NewOrder(side Side, reason string) *Order {
	return &Order{
		ID:     id.New(),
		Side:   side,
		Status: Created,
		Reason: reason,
	}
}

// Transition moves the order to next, rejecting moves out of a terminal
// state or not present in the state table.
func (o *Order) Transition(next Status) error {
	if o.Status.Terminal() {
		return fmt.Errorf("sim: order %s is terminal (%s), cannot move to %s", o.ID, o.Status, next)
	}
	for _, allowed := range transitions[o.Status] {
		if next == allowed {
			o.Status = next
			return nil
		}
	}
	return fmt.Errorf("sim: illegal order transition %s -> %s", o.Status, next)
}
