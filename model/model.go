// 定义模型包
package model

import (
	"fmt"
	"time"
)

// Candle 定义了K线的结构，是引擎的基础输入单元。
// 调用方保证K线序列按时间严格递增、无缺口，引擎不再按时间戳重新对齐。
type Candle struct {
	Symbol    string    // 标的代码，如"000878"
	Time      time.Time // 时间戳
	UpdatedAt time.Time // 更新时间
	Open      float64   // 开盘价
	Close     float64   // 收盘价
	Low       float64   // 最低价
	High      float64   // 最高价
	Volume    float64   // 成交量
	Complete  bool      // 是否为完整周期的K线

	// 从CSV输入中附加的额外列
	Metadata map[string]float64
}

// Empty 方法用于判断一个K线是否为空
func (c Candle) Empty() bool {
	return c.Symbol == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0
}

// Dataframe 定义了数据帧的结构，按位置对齐地存储一个标的的OHLCV时间序列。
type Dataframe struct {
	Symbol string // 标的代码

	Close  Series[float64] // 收盘价序列
	Open   Series[float64] // 开盘价序列
	High   Series[float64] // 最高价序列
	Low    Series[float64] // 最低价序列
	Volume Series[float64] // 成交量序列

	Time       []time.Time // 时间戳序列
	LastUpdate time.Time   // 最后更新时间

	// 自定义用户元数据
	Metadata map[string]Series[float64]
}

// Sample 方法用于从Dataframe中抽取最近的N个数据点作为一个新的Dataframe
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start <= 0 {
		return df
	}

	sample := Dataframe{
		Symbol:     df.Symbol,
		Close:      df.Close.LastValues(positions),
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64]),
	}

	for key := range df.Metadata {
		sample.Metadata[key] = df.Metadata[key].LastValues(positions)
	}

	return sample
}

// AppendCandle 方法把一根K线追加到数据帧末尾，保持各序列位置对齐。
func (df *Dataframe) AppendCandle(candle Candle) {
	df.Close = append(df.Close, candle.Close)
	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time

	for k, v := range candle.Metadata {
		if df.Metadata == nil {
			df.Metadata = make(map[string]Series[float64])
		}
		df.Metadata[k] = append(df.Metadata[k], v)
	}
}

// IndicatorSeries 定义了一个因子家族的指标输入：一个或多个命名子序列，
// 与K线序列按位置1:1对齐。例如MACD携带{macd, signal, hist}三列，
// 布林带携带{upper, mid, lower, close}。预热期内未定义的位置为NaN。
type IndicatorSeries struct {
	Name    string                     // 指标名称，如"macd"
	Columns map[string]Series[float64] // 子序列集合，全部等长
}

// Column 返回指定名称的子序列，不存在时返回错误。
func (s IndicatorSeries) Column(name string) (Series[float64], error) {
	column, ok := s.Columns[name]
	if !ok {
		return nil, fmt.Errorf("indicator %s: missing column %q", s.Name, name)
	}
	return column, nil
}

// Lenght 返回指标序列的长度（任取一列，所有列等长）。
func (s IndicatorSeries) Lenght() int {
	for _, column := range s.Columns {
		return len(column)
	}
	return 0
}

// Validate 检查所有子序列长度一致。长度不一致说明上游对齐被破坏。
func (s IndicatorSeries) Validate() error {
	size := -1
	for name, column := range s.Columns {
		if size == -1 {
			size = len(column)
			continue
		}
		if len(column) != size {
			return fmt.Errorf("indicator %s: column %q has length %d, want %d",
				s.Name, name, len(column), size)
		}
	}
	return nil
}
