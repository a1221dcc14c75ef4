package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/factorbot/model"
)

// ErrInsufficientData 表示CSV数据源中的K线数量不足。
var ErrInsufficientData = errors.New("insufficient data")

// SymbolFeed 定义了一个标的的CSV数据源配置：
// 标的代码、CSV文件路径和数据的时间周期（如1m、5m、1d）。
type SymbolFeed struct {
	Symbol    string // 标的代码，如"000878"
	File      string // CSV文件的完整路径
	Timeframe string // 文件内数据的时间周期
}

// CSVFeed 从CSV文件提供K线序列，是合成引擎上游的数据协作方之一。
// 引擎本身不读取文件，它只接收CSVFeed产出的已对齐数据帧。
type CSVFeed struct {
	Feeds                 map[string]SymbolFeed   // 每个标的的数据源配置
	CandleSymbolTimeFrame map[string][]model.Candle // 键为"标的--周期"，如"000878--1m"
}

// parseHeaders 解析CSV表头，确定time/open/close等字段的列位置，
// 预定义之外的表头作为额外列返回。表头第一列能解析为数字时说明
// 文件没有表头行，按默认列顺序处理。
func parseHeaders(headers []string) (index map[string]int, additional []string, ok bool) {
	headerMap := map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}

	_, err := strconv.Atoi(headers[0])
	if err == nil {
		return headerMap, additional, false
	}

	for index, h := range headers {
		if _, ok := headerMap[h]; !ok {
			additional = append(additional, h)
		}
		headerMap[h] = index
	}

	return headerMap, additional, true
}

// NewCSVFeed 从一个或多个CSV文件创建数据源，并把数据重采样到目标时间周期。
func NewCSVFeed(targetTimeframe string, feeds ...SymbolFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:                 make(map[string]SymbolFeed),
		CandleSymbolTimeFrame: make(map[string][]model.Candle),
	}

	for _, feed := range feeds {
		csvFeed.Feeds[feed.Symbol] = feed

		csvFile, err := os.Open(feed.File)
		if err != nil {
			return nil, err
		}

		csvLines, err := csv.NewReader(csvFile).ReadAll()
		if err != nil {
			return nil, err
		}

		var candles []model.Candle

		headerMap, additionalHeaders, hasCustomHeaders := parseHeaders(csvLines[0])
		if hasCustomHeaders {
			csvLines = csvLines[1:]
		}

		for _, line := range csvLines {
			timestamp, err := strconv.Atoi(line[headerMap["time"]])
			if err != nil {
				return nil, err
			}

			candle := model.Candle{
				Time:      time.Unix(int64(timestamp), 0).UTC(),
				UpdatedAt: time.Unix(int64(timestamp), 0).UTC(),
				Symbol:    feed.Symbol,
				Complete:  true,
			}

			candle.Open, err = strconv.ParseFloat(line[headerMap["open"]], 64)
			if err != nil {
				return nil, err
			}
			candle.Close, err = strconv.ParseFloat(line[headerMap["close"]], 64)
			if err != nil {
				return nil, err
			}
			candle.Low, err = strconv.ParseFloat(line[headerMap["low"]], 64)
			if err != nil {
				return nil, err
			}
			candle.High, err = strconv.ParseFloat(line[headerMap["high"]], 64)
			if err != nil {
				return nil, err
			}
			candle.Volume, err = strconv.ParseFloat(line[headerMap["volume"]], 64)
			if err != nil {
				return nil, err
			}

			if hasCustomHeaders {
				candle.Metadata = make(map[string]float64)
				for _, header := range additionalHeaders {
					candle.Metadata[header], err = strconv.ParseFloat(line[headerMap[header]], 64)
					if err != nil {
						return nil, err
					}
				}
			}

			candles = append(candles, candle)
		}

		csvFeed.CandleSymbolTimeFrame[csvFeed.feedTimeframeKey(feed.Symbol, feed.Timeframe)] = candles

		err = csvFeed.resample(feed.Symbol, feed.Timeframe, targetTimeframe)
		if err != nil {
			return nil, err
		}
	}

	return csvFeed, nil
}

// feedTimeframeKey 把标的代码和时间周期拼成唯一键，如"000878--1h"。
func (c CSVFeed) feedTimeframeKey(symbol, timeframe string) string {
	return fmt.Sprintf("%s--%s", symbol, timeframe)
}

// Limit 把每个标的的K线裁剪到最近的给定时间范围内。
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for key, candles := range c.CandleSymbolTimeFrame {
		if len(candles) == 0 {
			continue
		}
		start := candles[len(candles)-1].Time.Add(-duration)
		c.CandleSymbolTimeFrame[key] = lo.Filter(candles, func(candle model.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// isFistCandlePeriod 检查时间点t是否是目标时间周期内第一个周期的开始。
func isFistCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	prev := t.Add(-fromDuration).UTC()
	return isLastCandlePeriod(prev, fromTimeframe, targetTimeframe)
}

// isLastCandlePeriod 检查时间点t是否位于目标时间周期的最后一格，
// 即下一根源K线是否开启一个新的目标周期。
func isLastCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	if fromTimeframe == targetTimeframe {
		return true, nil
	}

	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	next := t.Add(fromDuration).UTC()

	switch targetTimeframe {
	case "1m":
		return next.Second()%60 == 0, nil
	case "5m":
		return next.Minute()%5 == 0, nil
	case "10m":
		return next.Minute()%10 == 0, nil
	case "15m":
		return next.Minute()%15 == 0, nil
	case "30m":
		return next.Minute()%30 == 0, nil
	case "1h":
		return next.Minute()%60 == 0, nil
	case "2h":
		return next.Minute() == 0 && next.Hour()%2 == 0, nil
	case "4h":
		return next.Minute() == 0 && next.Hour()%4 == 0, nil
	case "12h":
		return next.Minute() == 0 && next.Hour()%12 == 0, nil
	case "1d":
		return next.Minute() == 0 && next.Hour()%24 == 0, nil
	case "1w":
		return next.Minute() == 0 && next.Hour()%24 == 0 && next.Weekday() == time.Sunday, nil
	}

	return false, fmt.Errorf("invalid timeframe: %s", targetTimeframe)
}

// resample 把一个标的的K线从源时间周期重采样到目标时间周期：
// 开盘价取周期内第一根，收盘价取最后一根，最高最低取极值，成交量累加。
func (c *CSVFeed) resample(symbol, sourceTimeframe, targetTimeframe string) error {
	sourceKey := c.feedTimeframeKey(symbol, sourceTimeframe)
	targetKey := c.feedTimeframeKey(symbol, targetTimeframe)

	// 跳到第一个与目标周期边界对齐的源K线
	var i int
	for ; i < len(c.CandleSymbolTimeFrame[sourceKey]); i++ {
		if ok, err := isFistCandlePeriod(c.CandleSymbolTimeFrame[sourceKey][i].Time, sourceTimeframe,
			targetTimeframe); err != nil {
			return err
		} else if ok {
			break
		}
	}

	candles := make([]model.Candle, 0)
	for ; i < len(c.CandleSymbolTimeFrame[sourceKey]); i++ {
		candle := c.CandleSymbolTimeFrame[sourceKey][i]
		if last, err := isLastCandlePeriod(candle.Time, sourceTimeframe, targetTimeframe); err != nil {
			return err
		} else if last {
			candle.Complete = true
		} else {
			candle.Complete = false
		}

		// 上一根目标K线尚未收齐时，继续向其中合并
		lastIndex := len(candles) - 1
		if lastIndex >= 0 && !candles[lastIndex].Complete {
			candle.Time = candles[lastIndex].Time
			candle.Open = candles[lastIndex].Open
			candle.High = math.Max(candles[lastIndex].High, candle.High)
			candle.Low = math.Min(candles[lastIndex].Low, candle.Low)
			candle.Volume += candles[lastIndex].Volume
		}
		candles = append(candles, candle)
	}

	// 去掉末尾未收齐的K线
	if len(candles) > 0 && !candles[len(candles)-1].Complete {
		candles = candles[:len(candles)-1]
	}

	c.CandleSymbolTimeFrame[targetKey] = candles

	return nil
}

// CandlesByPeriod 返回指定标的、时间周期在[start, end]范围内的K线。
func (c CSVFeed) CandlesByPeriod(symbol, timeframe string, start, end time.Time) ([]model.Candle, error) {
	key := c.feedTimeframeKey(symbol, timeframe)
	candles := make([]model.Candle, 0)
	for _, candle := range c.CandleSymbolTimeFrame[key] {
		if candle.Time.Before(start) || candle.Time.After(end) {
			continue
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// Dataframe 把指定标的、时间周期的K线组装成引擎需要的数据帧。
// 重采样后序列中间会留有未收齐的K线，这里只取Complete的；
// 数量少于minCandles时返回ErrInsufficientData。
func (c CSVFeed) Dataframe(symbol, timeframe string, minCandles int) (*model.Dataframe, error) {
	key := c.feedTimeframeKey(symbol, timeframe)
	candles := lo.Filter(c.CandleSymbolTimeFrame[key], func(candle model.Candle, _ int) bool {
		return candle.Complete
	})
	if len(candles) < minCandles {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, symbol)
	}

	df := &model.Dataframe{
		Symbol:   symbol,
		Metadata: make(map[string]model.Series[float64]),
	}
	for _, candle := range candles {
		df.AppendCandle(candle)
	}
	return df, nil
}
