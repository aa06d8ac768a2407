package strategy

import "github.com/sirupsen/logrus"

// SMACross is the verbose moving-average-crossover driver. Rules, in fixed
// precedence per bar:
//
//  1. an order in flight suppresses any new intent
//  2. flat and fast crossed above slow: buy
//  3. holding: rate of change below the stop threshold sells (stop-loss
//     takes precedence over the trend exit), otherwise a cross below sells
//
// Every bar's close and every created intent is logged, matching the
// single-run report output.
type SMACross struct {
	// StopThreshold is the ROC level below which a held position is dumped,
	// e.g. -0.1 for a 10% single-bar drop.
	StopThreshold float64

	log *logrus.Logger
}

// NewSMACross creates the verbose crossover driver logging to log.
func NewSMACross(stopThreshold float64, log *logrus.Logger) *SMACross {
	return &SMACross{StopThreshold: stopThreshold, log: log}
}

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) Evaluate(snap Snapshot) Intent {
	s.log.WithField("close", snap.Close).Info(snap.Time.Format("2006-01-02 15:04:05"))

	if snap.OrderOpen {
		return hold
	}

	if !snap.Holding {
		if snap.Cross > 0 {
			s.log.WithField("price", snap.Close).Info("BUY CREATE")
			return Intent{Action: Buy, Reason: "BullCross"}
		}
		return hold
	}

	if snap.ROCReady && snap.ROC < s.StopThreshold {
		s.log.WithFields(logrus.Fields{"price": snap.Close, "roc": snap.ROC}).Info("SELL CREATE (stop)")
		return Intent{Action: Sell, Reason: "StopLoss"}
	}
	if snap.Cross < 0 {
		s.log.WithField("price", snap.Close).Info("SELL CREATE")
		return Intent{Action: Sell, Reason: "BearCross"}
	}
	return hold
}
