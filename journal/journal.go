// Package journal persists backtest output: executed trades, the per-bar
// equity curve, and sweep KPI rows. CSV and SQLite backends are provided.
package journal

import "time"

// TradeRecord is one completed round trip: a buy fill later closed by a
// sell fill.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64 // net of commission on both legs
	Reason     string  // exit reason: BearCross, StopLoss
}

// EquitySnapshot is portfolio state marked at one bar's close.
type EquitySnapshot struct {
	Time   time.Time
	Cash   float64
	Equity float64
}

// KPIRow is one sweep cell: the aggregated statistics of a single
// (fast, slow) backtest run. Ratio fields are NaN when undefined (zero
// trades, or no losing trades).
type KPIRow struct {
	Fast         int
	Slow         int
	EndValue     float64
	AvgReturn    float64
	MaxDrawdown  float64
	WinTrades    int
	LossTrades   int
	TotalTrades  int
	WinRatio     float64
	AvgWin       float64
	AvgLoss      float64
	WinLossRatio float64
}

// Journal records a backtest run's output.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that keeps nothing; the sweep uses it so independent
// runs pay no persistence cost.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
