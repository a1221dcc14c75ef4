package indicator

import (
	"fmt"

	"github.com/itqwq/factorbot/factor"
	"github.com/itqwq/factorbot/model"
)

// MACD的经典参数：12日快线、26日慢线、9日信号线。
// 趋势因子的Period参数只控制得分的时间衰减，不改变指标本身。
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// Build 为指定的规则家族从数据帧构造指标输入序列。
// 输出与K线序列按位置1:1对齐，预热期内未定义的位置为NaN。
// 序列长度不足以产生任何有效值时返回ErrInsufficientData——
// 这属于结构上不可能完成的请求，而不是普通的预热缺口。
func Build(kind factor.RuleKind, df *model.Dataframe, p factor.Params) (model.IndicatorSeries, error) {
	switch kind {
	case factor.RuleTrend:
		return BuildTrend(df)
	case factor.RuleOscillator:
		return BuildOscillator(df, p.Period)
	case factor.RuleMomentum:
		return BuildMomentum(df, p.Lookback)
	case factor.RuleVolatility:
		return BuildVolatility(df, p.Window)
	case factor.RuleChannel:
		return BuildChannel(df, p.Period)
	case factor.RuleBand:
		return BuildBand(df, p.Period, p.Deviation)
	}
	return model.IndicatorSeries{}, fmt.Errorf("%w: unknown rule kind %q", factor.ErrConfiguration, kind)
}

// BuildTrend 构造MACD指标输入：{macd, signal, hist}三列。
func BuildTrend(df *model.Dataframe) (model.IndicatorSeries, error) {
	warmup := macdSlowPeriod + macdSignalPeriod - 2
	if err := requireLength(df, warmup+1); err != nil {
		return model.IndicatorSeries{}, err
	}

	macd, signal, hist := MACD(df.Close, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	return model.IndicatorSeries{
		Name: "macd",
		Columns: map[string]model.Series[float64]{
			"macd":   nanWarmup(macd, warmup),
			"signal": nanWarmup(signal, warmup),
			"hist":   nanWarmup(hist, warmup),
		},
	}, nil
}

// BuildOscillator 构造RSI指标输入，单列{value}。
func BuildOscillator(df *model.Dataframe, period int) (model.IndicatorSeries, error) {
	if err := requireLength(df, period+1); err != nil {
		return model.IndicatorSeries{}, err
	}

	rsi := RSI(df.Close, period)
	return model.IndicatorSeries{
		Name: "rsi",
		Columns: map[string]model.Series[float64]{
			"value": nanWarmup(rsi, period),
		},
	}, nil
}

// BuildMomentum 构造动量指标输入：回看lookback根K线的涨跌幅（百分比）。
func BuildMomentum(df *model.Dataframe, lookback int) (model.IndicatorSeries, error) {
	if err := requireLength(df, lookback+1); err != nil {
		return model.IndicatorSeries{}, err
	}

	change := ROCP(df.Close, lookback)
	values := make(model.Series[float64], len(change))
	for i, v := range change {
		values[i] = v * 100
	}
	return model.IndicatorSeries{
		Name: "momentum",
		Columns: map[string]model.Series[float64]{
			"value": nanWarmup(values, lookback),
		},
	}, nil
}

// BuildVolatility 构造波动率指标输入：单根涨跌幅的window期滚动标准差（百分比）。
func BuildVolatility(df *model.Dataframe, window int) (model.IndicatorSeries, error) {
	// 第一根K线没有收益率，再加window-1根预热标准差
	warmup := window
	if err := requireLength(df, warmup+1); err != nil {
		return model.IndicatorSeries{}, err
	}

	returns := ROCP(df.Close, 1)
	for i := range returns {
		returns[i] *= 100
	}
	dispersion := StdDev(returns, window, 1.0)
	return model.IndicatorSeries{
		Name: "volatility",
		Columns: map[string]model.Series[float64]{
			"value": nanWarmup(dispersion, warmup),
		},
	}, nil
}

// BuildChannel 构造CCI指标输入，单列{value}。
func BuildChannel(df *model.Dataframe, period int) (model.IndicatorSeries, error) {
	if err := requireLength(df, period); err != nil {
		return model.IndicatorSeries{}, err
	}

	cci := CCI(df.High, df.Low, df.Close, period)
	return model.IndicatorSeries{
		Name: "cci",
		Columns: map[string]model.Series[float64]{
			"value": nanWarmup(cci, period-1),
		},
	}, nil
}

// BuildBand 构造布林带指标输入：{upper, mid, lower, close}四列。
// 收盘价作为一列带入，%B评分需要价格相对轨道的位置。
func BuildBand(df *model.Dataframe, period int, deviation float64) (model.IndicatorSeries, error) {
	if err := requireLength(df, period); err != nil {
		return model.IndicatorSeries{}, err
	}

	upper, mid, lower := BB(df.Close, period, deviation, TypeSMA)
	warmup := period - 1
	return model.IndicatorSeries{
		Name: "boll",
		Columns: map[string]model.Series[float64]{
			"upper": nanWarmup(upper, warmup),
			"mid":   nanWarmup(mid, warmup),
			"lower": nanWarmup(lower, warmup),
			"close": append(model.Series[float64]{}, df.Close...),
		},
	}, nil
}

// requireLength 检查数据帧是否至少有want根K线。
func requireLength(df *model.Dataframe, want int) error {
	if len(df.Close) < want {
		return fmt.Errorf("%w: need at least %d candles, got %d",
			factor.ErrInsufficientData, want, len(df.Close))
	}
	return nil
}
