// Package market provides the OHLCV bar data model and the bar feed used by
// the backtest engine.
package market

import "time"

// Bar is one OHLCV observation for a fixed time interval. Bars are immutable
// once loaded.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
