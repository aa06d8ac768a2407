package journal

import (
	"database/sql"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals trades, equity and sweep KPI rows into one database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, units, entry_price, exit_price, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Units, t.EntryPrice,
		t.ExitPrice, t.OpenTime, t.CloseTime, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity) VALUES (?, ?, ?)`,
		e.Time, e.Cash, e.Equity,
	)
	return err
}

// RecordKPI upserts one sweep cell. NaN ratio fields are stored as NULL so
// SQL aggregation over the table stays sane.
func (j *SQLite) RecordKPI(k KPIRow) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO kpi
		(fast, slow, end_value, return_ave, max_draw_downs, win_trades, loss_trades,
		 total_trades, win_ratio, ave_win_value, ave_loss_value, ave_win_loss_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.Fast, k.Slow, k.EndValue, nullable(k.AvgReturn), nullable(k.MaxDrawdown),
		k.WinTrades, k.LossTrades, k.TotalTrades,
		nullable(k.WinRatio), nullable(k.AvgWin), nullable(k.AvgLoss), nullable(k.WinLossRatio),
	)
	return err
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, units, entry_price, exit_price, open_time, close_time, realized_pl, reason
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Symbol,
			&rec.Units,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.RealizedPL,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListKPI returns all sweep cells ordered by (fast, slow). NULL ratio
// columns come back as NaN.
func (j *SQLite) ListKPI() ([]KPIRow, error) {
	rows, err := j.db.Query(`
		SELECT fast, slow, end_value, return_ave, max_draw_downs, win_trades, loss_trades,
		       total_trades, win_ratio, ave_win_value, ave_loss_value, ave_win_loss_ratio
		FROM kpi
		ORDER BY fast ASC, slow ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPIRow
	for rows.Next() {
		var k KPIRow
		var avgRet, maxDD, winRatio, avgWin, avgLoss, wlRatio sql.NullFloat64
		if err := rows.Scan(
			&k.Fast, &k.Slow, &k.EndValue, &avgRet, &maxDD,
			&k.WinTrades, &k.LossTrades, &k.TotalTrades,
			&winRatio, &avgWin, &avgLoss, &wlRatio,
		); err != nil {
			return nil, err
		}
		k.AvgReturn = fromNull(avgRet)
		k.MaxDrawdown = fromNull(maxDD)
		k.WinRatio = fromNull(winRatio)
		k.AvgWin = fromNull(avgWin)
		k.AvgLoss = fromNull(avgLoss)
		k.WinLossRatio = fromNull(wlRatio)
		out = append(out, k)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
