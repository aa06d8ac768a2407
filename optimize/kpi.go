package optimize

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/quantbench/smacross/backtest"
	"github.com/quantbench/smacross/journal"
)

// Aggregate reduces one run's result to a KPI row. Ratios that would divide
// by zero (no trades, or no losing trades) are NaN rather than an error:
// some parameter combinations legitimately never trade.
func Aggregate(ps ParamSet, res backtest.Result) journal.KPIRow {
	row := journal.KPIRow{
		Fast:        ps.Fast,
		Slow:        ps.Slow,
		EndValue:    res.EndValue,
		AvgReturn:   res.AvgReturn,
		MaxDrawdown: res.MaxDrawdown,
		WinTrades:   res.Wins,
		LossTrades:  res.Losses,
		TotalTrades: res.TotalTrades(),
	}

	var winSum, lossSum float64
	for _, t := range res.Trades {
		if t.PnL > 0 {
			winSum += t.PnL
		} else {
			lossSum += t.PnL
		}
	}

	row.WinRatio = ratio(float64(row.WinTrades), float64(row.TotalTrades))
	row.AvgWin = ratio(winSum, float64(row.WinTrades))
	row.AvgLoss = ratio(lossSum, float64(row.LossTrades))
	row.WinLossRatio = ratio(row.AvgWin, row.AvgLoss)

	return row
}

func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return math.NaN()
	}
	return num / den
}

// KPIHeader matches the KPI CSV column order.
var KPIHeader = []string{
	"periods_fast", "periods_slow", "end_value", "return_ave", "max_draw_downs",
	"win_trades", "loss_trades", "total_trades", "win_ratio",
	"ave_win_value", "ave_loss_value", "ave_win_loss_ratio",
}

// WriteCSV writes the KPI table to path, one row per grid cell. NaN fields
// are written literally as "NaN".
func WriteCSV(path string, rows []journal.KPIRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(KPIHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Fast),
			strconv.Itoa(r.Slow),
			ff(r.EndValue),
			ff(r.AvgReturn),
			ff(r.MaxDrawdown),
			strconv.Itoa(r.WinTrades),
			strconv.Itoa(r.LossTrades),
			strconv.Itoa(r.TotalTrades),
			ff(r.WinRatio),
			ff(r.AvgWin),
			ff(r.AvgLoss),
			ff(r.WinLossRatio),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ff(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
