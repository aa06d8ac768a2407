package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `datetime,open,high,low,close,volume
2020-01-01 00:00:00,7195.24,7196.25,7175.46,7177.02,511.814901
2020-01-01 01:00:00,7176.47,7230.00,7175.71,7216.27,883.052603
2020-01-01 02:00:00,7215.52,7244.87,7211.41,7242.85,655.156809
`

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := writeSample(t, t.TempDir(), "BTC_USDT_1h.csv")
	s, err := LoadCSV(path, "BTC_USDT", "1h")
	require.NoError(t, err)

	assert.Equal(t, "BTC_USDT", s.Symbol)
	assert.Equal(t, "1h", s.Timeframe)
	require.Equal(t, 3, s.Len())

	first := s.First()
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, 7195.24, first.Open)
	assert.Equal(t, 7196.25, first.High)
	assert.Equal(t, 7175.46, first.Low)
	assert.Equal(t, 7177.02, first.Close)
	assert.Equal(t, 511.814901, first.Volume)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bare.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"2020-01-01 00:00:00,1,2,0.5,1.5,10\n2020-01-01 01:00:00,1.5,2.5,1,2,20\n",
	), 0o644))

	s, err := LoadCSV(path, "X", "1h")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	t.Parallel()

	t.Run("bad datetime", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("datetime,open,high,low,close,volume\nnot-a-date,1,2,0.5,1.5,10\n"), 0o644))
		_, err := LoadCSV(path, "X", "1h")
		assert.Error(t, err)
	})

	t.Run("bad number", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("datetime,open,high,low,close,volume\n2020-01-01 00:00:00,one,2,0.5,1.5,10\n"), 0o644))
		_, err := LoadCSV(path, "X", "1h")
		assert.Error(t, err)
	})

	t.Run("duplicate timestamps", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dup.csv")
		require.NoError(t, os.WriteFile(path, []byte(
			"2020-01-01 00:00:00,1,2,0.5,1.5,10\n2020-01-01 00:00:00,1.5,2.5,1,2,20\n",
		), 0o644))
		_, err := LoadCSV(path, "X", "1h")
		assert.ErrorIs(t, err, ErrDataGap)
	})
}

func TestCSVFetcher(t *testing.T) {
	t.Parallel()

	t.Run("fetch with range", func(t *testing.T) {
		dir := t.TempDir()
		writeSample(t, dir, "BTC_USDT_1h.csv")

		f := &CSVFetcher{Dir: dir}
		s, err := f.Fetch("BTC_USDT", "1h",
			time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 1, 2, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		require.Equal(t, 1, s.Len())
		assert.Equal(t, 7216.27, s.First().Close)
	})

	t.Run("open range returns everything", func(t *testing.T) {
		dir := t.TempDir()
		writeSample(t, dir, "BTC_USDT_1h.csv")

		f := &CSVFetcher{Dir: dir}
		s, err := f.Fetch("BTC_USDT", "1h", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		f := &CSVFetcher{Dir: t.TempDir()}
		_, err := f.Fetch("ETH_USDT", "1h", time.Time{}, time.Time{})
		assert.Error(t, err)
	})
}
