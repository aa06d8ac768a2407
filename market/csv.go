package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// Fetcher returns an ordered bar series for a symbol/timeframe/date range.
// The engine only requires strictly increasing timestamps; where the bars
// come from (cache, remote source, flat file) is the fetcher's business.
type Fetcher interface {
	Fetch(symbol, timeframe string, from, to time.Time) (*Series, error)
}

// CSVFetcher serves bar series from CSV files under Dir. Files are named
// <symbol>_<timeframe>.csv (e.g. BTC_USDT_1h.csv) and may additionally be
// xz-compressed (.csv.xz) or wrapped in a zip archive (.zip), which is how
// exchange dumps usually arrive.
type CSVFetcher struct {
	Dir string
}

func (f *CSVFetcher) Fetch(symbol, timeframe string, from, to time.Time) (*Series, error) {
	base := filepath.Join(f.Dir, fmt.Sprintf("%s_%s", symbol, timeframe))

	for _, candidate := range []string{base + ".csv", base + ".csv.xz", base + ".zip"} {
		if _, err := os.Stat(candidate); err == nil {
			s, err := LoadCSV(candidate, symbol, timeframe)
			if err != nil {
				return nil, err
			}
			return s.Slice(from, to), nil
		}
	}
	return nil, fmt.Errorf("market: no data file for %s %s under %s", symbol, timeframe, f.Dir)
}

// LoadCSV reads a full bar series from a CSV file with a
// datetime,open,high,low,close,volume header. Compressed inputs (.xz, .zip)
// are decompressed transparently.
func LoadCSV(path, symbol, timeframe string) (*Series, error) {
	r, closeFn, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	bars, err := readBars(r)
	if err != nil {
		return nil, fmt.Errorf("market: read %s: %w", path, err)
	}
	return NewSeries(symbol, timeframe, bars)
}

// openData opens path and returns a plain CSV reader regardless of the
// on-disk encoding.
func openData(path string) (io.Reader, func() error, error) {
	switch {
	case strings.HasSuffix(path, ".xz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("market: xz %s: %w", path, err)
		}
		return xr, f.Close, nil

	case strings.HasSuffix(path, ".zip"):
		// Extract next to the archive, then read the .csv with the same stem.
		dir := filepath.Dir(path)
		if err := unzip.Extract(path, dir); err != nil {
			return nil, nil, fmt.Errorf("market: unzip %s: %w", path, err)
		}
		inner := strings.TrimSuffix(path, ".zip") + ".csv"
		f, err := os.Open(inner)
		if err != nil {
			return nil, nil, fmt.Errorf("market: archive %s did not contain %s: %w", path, filepath.Base(inner), err)
		}
		return f, f.Close, nil

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func readBars(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
	sawFirst := false

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "datetime") {
				continue
			}
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("short row %q: need datetime,open,high,low,close,volume", strings.Join(row, ","))
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
}

func parseBarRow(row []string) (Bar, error) {
	ts := strings.TrimSpace(row[0])
	var t time.Time
	var err error
	for _, layout := range timeLayouts {
		if t, err = time.Parse(layout, ts); err == nil {
			break
		}
	}
	if err != nil {
		return Bar{}, fmt.Errorf("bad datetime %q", ts)
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad number %q in row at %s", row[i+1], ts)
		}
		vals[i] = v
	}

	return Bar{
		Time:   t.UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
