package sim

import (
	"fmt"
	"math"
)

// Position is the broker's current holding. Units is never negative (no
// shorting) and the position is flat before the first buy and after every
// completed sell.
type Position struct {
	Units    float64
	AvgEntry float64
}

// Flat reports whether no position is held.
func (p Position) Flat() bool { return p.Units == 0 }

// Broker simulates order execution with cash and commission accounting. It
// is not safe for concurrent use; each backtest run owns a private Broker.
type Broker struct {
	cash           float64
	commissionRate float64
	sizingFraction float64
	pos            Position
}

// NewBroker creates a broker with starting cash, a proportional commission
// rate applied symmetrically to buys and sells, and the fraction of
// portfolio value committed to each buy (e.g. 0.99).
func NewBroker(cash, commissionRate, sizingFraction float64) *Broker {
	return &Broker{
		cash:           cash,
		commissionRate: commissionRate,
		sizingFraction: sizingFraction,
	}
}

func (b *Broker) Cash() float64      { return b.cash }
func (b *Broker) Position() Position { return b.pos }

// Value returns cash plus the position marked at the given price.
func (b *Broker) Value(mark float64) float64 {
	return b.cash + b.pos.Units*mark
}

// Execute fills an Accepted order at fillPrice and transitions it to a
// terminal state:
//
//   - buy: commits sizingFraction of portfolio value, converted to whole
//     units at fillPrice. Returns Margin (no settlement) if the cost
//     including commission would drive cash negative, or if no whole unit is
//     affordable.
//   - sell: liquidates the entire position. Rejected if the position is
//     already flat.
//
// Cash moves by units*price*(1 +/- commissionRate). The returned status
// mirrors order.Status.
func (b *Broker) Execute(order *Order, fillPrice float64) (Status, error) {
	if order.Status != Accepted {
		return order.Status, fmt.Errorf("sim: cannot execute order in state %s", order.Status)
	}
	if fillPrice <= 0 {
		if err := order.Transition(Rejected); err != nil {
			return order.Status, err
		}
		return Rejected, nil
	}

	switch order.Side {
	case Buy:
		units := math.Floor(b.Value(fillPrice) * b.sizingFraction / fillPrice)
		cost := units * fillPrice * (1 + b.commissionRate)
		if units < 1 || cost > b.cash {
			if err := order.Transition(Margin); err != nil {
				return order.Status, err
			}
			return Margin, nil
		}

		b.cash -= cost
		b.pos = Position{Units: b.pos.Units + units, AvgEntry: fillPrice}
		order.Units = units

	case Sell:
		if b.pos.Flat() {
			if err := order.Transition(Rejected); err != nil {
				return order.Status, err
			}
			return Rejected, nil
		}

		units := b.pos.Units
		b.cash += units * fillPrice * (1 - b.commissionRate)
		b.pos = Position{}
		order.Units = units

	default:
		return order.Status, fmt.Errorf("sim: unknown order side %d", order.Side)
	}

	order.FillPrice = fillPrice
	if err := order.Transition(Completed); err != nil {
		return order.Status, err
	}
	return Completed, nil
}
