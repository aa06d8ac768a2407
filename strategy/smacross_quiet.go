package strategy

// SMACrossQuiet is the sweep variant of the crossover driver: no stop-loss
// branch and no logging, so a parameter grid of hundreds of runs stays cheap
// and the log directory stays readable. Exits happen only on the opposite
// cross.
type SMACrossQuiet struct{}

func (SMACrossQuiet) Name() string { return "sma-cross-quiet" }

func (SMACrossQuiet) Evaluate(snap Snapshot) Intent {
	if snap.OrderOpen {
		return hold
	}

	if !snap.Holding {
		if snap.Cross > 0 {
			return Intent{Action: Buy, Reason: "BullCross"}
		}
		return hold
	}

	if snap.Cross < 0 {
		return Intent{Action: Sell, Reason: "BearCross"}
	}
	return hold
}
