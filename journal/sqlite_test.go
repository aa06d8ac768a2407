package journal

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteTrades(t *testing.T) {
	j := openTestDB(t)
	baseTime := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordTrade(TradeRecord{
			TradeID:    string(rune('a' + i)),
			Symbol:     "BTC_USDT",
			Units:      76,
			EntryPrice: 7000,
			ExitPrice:  7100,
			OpenTime:   baseTime.Add(time.Duration(i) * 24 * time.Hour),
			CloseTime:  baseTime.Add(time.Duration(i)*24*time.Hour + 12*time.Hour),
			RealizedPL: float64(100 * (i - 1)),
			Reason:     "BearCross",
		}))
	}

	// [day 0, day 2) catches the first two close times.
	got, err := j.ListTradesClosedBetween(baseTime, baseTime.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].TradeID)
	assert.Equal(t, "b", got[1].TradeID)
	assert.Equal(t, -100.0, got[0].RealizedPL)
	assert.Equal(t, "BTC_USDT", got[0].Symbol)
	assert.True(t, got[0].CloseTime.Before(got[1].CloseTime))
}

func TestSQLiteEquity(t *testing.T) {
	j := openTestDB(t)
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Cash:   110.12,
		Equity: 9890.0,
	}))
}

func TestSQLiteKPIRoundTrip(t *testing.T) {
	j := openTestDB(t)

	withTrades := KPIRow{
		Fast: 5, Slow: 22,
		EndValue: 10_500, AvgReturn: 0.0002, MaxDrawdown: 3.5,
		WinTrades: 2, LossTrades: 1, TotalTrades: 3,
		WinRatio: 2.0 / 3.0, AvgWin: 400, AvgLoss: -200, WinLossRatio: -2,
	}
	noTrades := KPIRow{
		Fast: 5, Slow: 21,
		EndValue: 10_000,
		WinRatio: math.NaN(), AvgWin: math.NaN(), AvgLoss: math.NaN(), WinLossRatio: math.NaN(),
	}

	require.NoError(t, j.RecordKPI(withTrades))
	require.NoError(t, j.RecordKPI(noTrades))

	rows, err := j.ListKPI()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordered by (fast, slow): the zero-trade cell first.
	assert.Equal(t, 21, rows[0].Slow)
	assert.True(t, math.IsNaN(rows[0].WinRatio), "NULL comes back as NaN")
	assert.True(t, math.IsNaN(rows[0].AvgLoss))

	assert.Equal(t, 22, rows[1].Slow)
	assert.InDelta(t, 2.0/3.0, rows[1].WinRatio, 1e-9)
	assert.InDelta(t, -2.0, rows[1].WinLossRatio, 1e-9)
	assert.Equal(t, 3, rows[1].TotalTrades)
}

func TestSQLiteKPIUpsert(t *testing.T) {
	j := openTestDB(t)

	row := KPIRow{Fast: 10, Slow: 20, EndValue: 10_000, WinRatio: math.NaN(), AvgWin: math.NaN(), AvgLoss: math.NaN(), WinLossRatio: math.NaN()}
	require.NoError(t, j.RecordKPI(row))

	row.EndValue = 11_000
	require.NoError(t, j.RecordKPI(row))

	rows, err := j.ListKPI()
	require.NoError(t, err)
	require.Len(t, rows, 1, "(fast, slow) is the primary key")
	assert.Equal(t, 11_000.0, rows[0].EndValue)
}
