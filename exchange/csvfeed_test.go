package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeed() SymbolFeed {
	return SymbolFeed{
		Symbol:    "000878",
		File:      "testdata/000878-1m.csv",
		Timeframe: "1m",
	}
}

func TestNewCSVFeed(t *testing.T) {
	feed, err := NewCSVFeed("1m", testFeed())
	require.NoError(t, err)

	candles := feed.CandleSymbolTimeFrame["000878--1m"]
	require.Len(t, candles, 30)

	first := candles[0]
	assert.Equal(t, "000878", first.Symbol)
	assert.Equal(t, time.Unix(1703548800, 0).UTC(), first.Time)
	assert.Equal(t, 10.0, first.Open)
	assert.True(t, first.Complete)

	t.Run("missing file", func(t *testing.T) {
		_, err := NewCSVFeed("1m", SymbolFeed{Symbol: "000878", File: "testdata/none.csv", Timeframe: "1m"})
		assert.Error(t, err)
	})
}

func TestCSVFeedResample(t *testing.T) {
	oneMin, err := NewCSVFeed("1m", testFeed())
	require.NoError(t, err)
	fiveMin, err := NewCSVFeed("5m", testFeed())
	require.NoError(t, err)

	source := oneMin.CandleSymbolTimeFrame["000878--1m"]
	df, err := fiveMin.Dataframe("000878", "5m", 1)
	require.NoError(t, err)

	// 30根1分钟K线对齐重采样为6根5分钟K线
	require.Len(t, df.Close, 6)

	t.Run("ohlcv merge", func(t *testing.T) {
		// 第一根5分钟K线聚合源数据的前5根
		assert.Equal(t, source[0].Time, df.Time[0])
		assert.Equal(t, source[0].Open, df.Open[0])
		assert.Equal(t, source[4].Close, df.Close[0])

		var high, low, volume float64
		low = source[0].Low
		for _, candle := range source[:5] {
			if candle.High > high {
				high = candle.High
			}
			if candle.Low < low {
				low = candle.Low
			}
			volume += candle.Volume
		}
		assert.InDelta(t, high, df.High[0], 1e-9)
		assert.InDelta(t, low, df.Low[0], 1e-9)
		assert.InDelta(t, volume, df.Volume[0], 1e-9)
	})

	t.Run("period boundaries", func(t *testing.T) {
		for i, ts := range df.Time {
			assert.Zero(t, ts.Minute()%5, "candle %d not aligned: %s", i, ts)
		}
	})
}

func TestCSVFeedDataframe(t *testing.T) {
	feed, err := NewCSVFeed("1m", testFeed())
	require.NoError(t, err)

	df, err := feed.Dataframe("000878", "1m", 30)
	require.NoError(t, err)
	assert.Equal(t, "000878", df.Symbol)
	assert.Len(t, df.Close, 30)
	assert.Len(t, df.Time, 30)
	assert.Equal(t, df.Time[len(df.Time)-1], df.LastUpdate)

	t.Run("insufficient candles", func(t *testing.T) {
		_, err := feed.Dataframe("000878", "1m", 31)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := feed.Dataframe("999999", "1m", 1)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestCSVFeedLimit(t *testing.T) {
	feed, err := NewCSVFeed("1m", testFeed())
	require.NoError(t, err)

	feed.Limit(10 * time.Minute)
	candles := feed.CandleSymbolTimeFrame["000878--1m"]
	assert.Len(t, candles, 10)
}

func TestCSVFeedCandlesByPeriod(t *testing.T) {
	feed, err := NewCSVFeed("1m", testFeed())
	require.NoError(t, err)

	start := time.Unix(1703548800, 0).UTC()
	end := start.Add(4 * time.Minute)

	candles, err := feed.CandlesByPeriod("000878", "1m", start, end)
	require.NoError(t, err)
	assert.Len(t, candles, 5)
}

func TestParseHeaders(t *testing.T) {
	t.Run("custom order with extra columns", func(t *testing.T) {
		index, additional, ok := parseHeaders([]string{"time", "close", "open", "low", "high", "volume", "turnover"})
		require.True(t, ok)
		assert.Equal(t, 1, index["close"])
		assert.Equal(t, 2, index["open"])
		assert.Equal(t, []string{"turnover"}, additional)
	})

	t.Run("headerless file uses default order", func(t *testing.T) {
		index, additional, ok := parseHeaders([]string{"1703548800", "10.0", "10.1", "9.9", "10.2", "1000"})
		assert.False(t, ok)
		assert.Empty(t, additional)
		assert.Equal(t, 0, index["time"])
		assert.Equal(t, 2, index["close"])
	})
}

func TestIsLastCandlePeriod(t *testing.T) {
	base := time.Date(2023, 12, 26, 0, 4, 0, 0, time.UTC)

	ok, err := isLastCandlePeriod(base, "1m", "5m")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = isLastCandlePeriod(base.Add(time.Minute), "1m", "5m")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("same timeframe", func(t *testing.T) {
		ok, err := isLastCandlePeriod(base, "1m", "1m")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("invalid timeframe", func(t *testing.T) {
		_, err := isLastCandlePeriod(base, "1m", "3y")
		assert.Error(t, err)
	})
}
