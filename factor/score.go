package factor

import (
	"fmt"
	"math"

	"github.com/itqwq/factorbot/model"
)

// Score 把一个因子家族的指标输入转换为[-1, 1]区间的逐K线得分序列。
// 每个规则只使用当根K线的指标值和固定的回看窗口，绝不窥视未来。
// 指标预热期内未定义的位置输出NaN，NaN原样传递，评分器本身绝不把NaN当作0。
func Score(ind model.IndicatorSeries, kind RuleKind, p Params) (model.Series[float64], error) {
	if err := p.Validate(kind); err != nil {
		return nil, err
	}
	if err := ind.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, err)
	}

	switch kind {
	case RuleTrend:
		return scoreTrend(ind, p)
	case RuleOscillator:
		return scoreOscillator(ind, p)
	case RuleMomentum:
		return scoreMomentum(ind, p)
	case RuleVolatility:
		return scoreVolatility(ind, p)
	case RuleChannel:
		return scoreChannel(ind, p)
	case RuleBand:
		return scoreBand(ind, p)
	}
	return nil, fmt.Errorf("%w: unknown rule kind %q", ErrConfiguration, kind)
}

// scoreTrend 实现MACD类趋势规则。
// 金叉后方向为+1，死叉后方向为-1，方向一直保持到下一次反向交叉。
// 得分 = 方向 ×（时间衰减项 + 柱状图强度项），整体截断到[-1, 1]。
// 衰减项从交叉当根的1.0开始，每经过Period根K线乘以DecayRate；
// 强度项是当根柱状图幅度相对窗口内最大幅度的比值。
func scoreTrend(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	macd, err := ind.Column("macd")
	if err != nil {
		return nil, err
	}
	signal, err := ind.Column("signal")
	if err != nil {
		return nil, err
	}
	hist, err := ind.Column("hist")
	if err != nil {
		return nil, err
	}

	out := make(model.Series[float64], len(macd))
	direction := 0.0 // 0表示尚未出现任何交叉
	barsSince := 0

	for i := range macd {
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) || math.IsNaN(hist[i]) {
			out[i] = math.NaN()
			continue
		}

		switch {
		case macd.CrossoverAt(signal, i):
			direction, barsSince = 1, 0
		case macd.CrossunderAt(signal, i):
			direction, barsSince = -1, 0
		default:
			if direction != 0 {
				barsSince++
			}
		}

		if direction == 0 {
			out[i] = 0
			continue
		}

		// DecayRate为0时Pow(0, 0)=1，交叉当根仍计满分
		duration := math.Pow(p.DecayRate, float64(barsSince)/float64(p.Period))

		strength := 0.0
		if scale := rollingMaxAbs(hist, i, p.Period); scale > 0 {
			strength = math.Abs(hist[i]) / scale
		}

		out[i] = clamp(direction*(duration+strength), -1, 1)
	}
	return out, nil
}

// scoreOscillator 实现RSI类超买超卖规则的分段线性映射：
// 值为50时得分0；中性区内向两侧阈值线性过渡到±0.5；
// 超过超买阈值后从-0.5继续线性逼近-1（值到100），超卖侧对称。
func scoreOscillator(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	values, err := ind.Column("value")
	if err != nil {
		return nil, err
	}

	out := make(model.Series[float64], len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}

		var score float64
		switch {
		case v >= p.Overbought:
			score = -0.5 - 0.5*math.Min((v-p.Overbought)/(100-p.Overbought), 1)
		case v <= p.Oversold:
			score = 0.5 + 0.5*math.Min((p.Oversold-v)/p.Oversold, 1)
		case v > 50:
			score = -0.5 * (v - 50) / (p.Overbought - 50)
		case v < 50:
			score = 0.5 * (50 - v) / (50 - p.Oversold)
		}
		out[i] = clamp(score, -1, 1)
	}
	return out, nil
}

// scoreMomentum 实现动量规则：回看窗口内的涨跌幅（百分比）按Scale归一，
// 涨跌幅达到±Scale时得分饱和到±1。上涨给正分。
func scoreMomentum(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	values, err := ind.Column("value")
	if err != nil {
		return nil, err
	}

	out := make(model.Series[float64], len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = clamp(v/p.Scale, -1, 1)
	}
	return out, nil
}

// scoreVolatility 实现波动率规则：对收益率滚动标准差再做一次滚动Z分数，
// 取负后截断到[-1, 1]。波动越高风险越大，得分越低。
// 零方差窗口输出0而不是未定义值；窗口统计用增量累加器，整体O(n)。
func scoreVolatility(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	values, err := ind.Column("value")
	if err != nil {
		return nil, err
	}

	acc := newRollingStat(p.Window)
	out := make(model.Series[float64], len(values))
	for i, v := range values {
		acc.push(v)
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}

		mean, stddev, ok := acc.meanStdDev()
		if !ok {
			// 非NaN样本不足两个，波动率没有参照历史，视为不贡献信号
			out[i] = 0
			continue
		}
		out[i] = clamp(-(v-mean)/stddev, -1, 1)
	}
	return out, nil
}

// scoreChannel 实现CCI类通道规则。span为上下轨之间的距离：
// 上轨之内线性映射到[-0.5, 0.5]，突破上轨后从-0.5继续向-1逼近，下轨对称。
func scoreChannel(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	values, err := ind.Column("value")
	if err != nil {
		return nil, err
	}

	span := p.UpperBand - p.LowerBand
	out := make(model.Series[float64], len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}

		var score float64
		switch {
		case v > p.UpperBand:
			score = -0.5 - 0.5*math.Min((v-p.UpperBand)/span, 1)
		case v < p.LowerBand:
			score = 0.5 + 0.5*math.Min((p.LowerBand-v)/span, 1)
		default:
			score = -v / span
		}
		out[i] = clamp(score, -1, 1)
	}
	return out, nil
}

// scoreBand 实现布林带%B规则。%B = (收盘价-下轨)/(上轨-下轨)：
// 突破上轨强超买给强负分，突破下轨强超卖给强正分，中轨附近中性；
// 之后按带宽做波动率调节（带宽收窄降低信号强度，扩张增强，上限1.5倍）。
func scoreBand(ind model.IndicatorSeries, p Params) (model.Series[float64], error) {
	upper, err := ind.Column("upper")
	if err != nil {
		return nil, err
	}
	mid, err := ind.Column("mid")
	if err != nil {
		return nil, err
	}
	lower, err := ind.Column("lower")
	if err != nil {
		return nil, err
	}
	closes, err := ind.Column("close")
	if err != nil {
		return nil, err
	}

	out := make(model.Series[float64], len(closes))
	for i := range closes {
		if math.IsNaN(upper[i]) || math.IsNaN(mid[i]) || math.IsNaN(lower[i]) || math.IsNaN(closes[i]) {
			out[i] = math.NaN()
			continue
		}

		// 带宽为零（横盘）时没有相对位置可言，视为中性
		if upper[i] <= lower[i] {
			out[i] = 0
			continue
		}

		percentB := (closes[i] - lower[i]) / (upper[i] - lower[i])

		var score float64
		switch {
		case percentB > 1.0:
			score = -math.Min((percentB-1.0)*2+0.8, 1)
		case percentB > 0.8:
			score = -0.5 - (percentB-0.8)*1.5
		case percentB < 0.0:
			score = math.Min(-percentB*2+0.8, 1)
		case percentB < 0.2:
			score = 0.5 + (0.2-percentB)*1.5
		default:
			score = 0.5 - percentB
		}

		bandwidth := 0.0
		if mid[i] > 0 {
			bandwidth = (upper[i] - lower[i]) / mid[i]
		}
		score *= math.Min(bandwidth/0.1, 1.5)

		out[i] = clamp(score, -1, 1)
	}
	return out, nil
}

// rollingMaxAbs 返回values中以i结尾、长度window的窗口内的最大绝对值，NaN跳过。
func rollingMaxAbs(values model.Series[float64], i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	max := 0.0
	for j := start; j <= i; j++ {
		if math.IsNaN(values[j]) {
			continue
		}
		if abs := math.Abs(values[j]); abs > max {
			max = abs
		}
	}
	return max
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
