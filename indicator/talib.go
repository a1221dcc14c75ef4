package indicator

// 引入github.com/markcheno/go-talib包，TA-Lib技术分析库的Go语言版本。
// 本包只封装合成引擎用到的几个原始指标，指标公式本身视为既定输入，
// 引擎不关心其推导过程。
import (
	"math"

	"github.com/markcheno/go-talib"
)

// MaType 等同于talib库中的移动平均类型。
type MaType = talib.MaType

// TypeSMA 简单移动平均线，布林带中轨的默认算法。
const TypeSMA = talib.SMA

// MACD 计算移动平均收敛与发散指标。
// 返回三个数组：MACD线（快慢EMA之差）、信号线、柱状图（两线之差）。
// MACD线上穿信号线为金叉（看涨），下穿为死叉（看跌）。
func MACD(input []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	return talib.Macd(input, fastPeriod, slowPeriod, signalPeriod)
}

// RSI 计算相对强弱指数，取值0到100。
// 高于70通常视为超买，低于30视为超卖。
func RSI(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// ROCP 计算给定周期内的价格变化率（比例形式，0.05表示上涨5%）。
func ROCP(input []float64, period int) []float64 {
	return talib.Rocp(input, period)
}

// StdDev 计算滚动标准差，波动率因子的基础数据。
func StdDev(input []float64, period int, nbDev float64) []float64 {
	return talib.StdDev(input, period, nbDev)
}

// BB 计算布林带，返回上中下三条轨道的数组。
// deviation是标准差倍数，常用2.0。
func BB(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	return talib.BBands(input, period, deviation, deviation, maType)
}

// CCI 计算商品通道指数。大于+100视为超买，小于-100视为超卖。
func CCI(high, low, close []float64, period int) []float64 {
	return talib.Cci(high, low, close, period)
}

// nanWarmup 返回输入的副本，并把前n个预热位置置为NaN。
// talib在预热期输出0，而引擎的约定是未定义的位置必须是NaN，
// 否则预热期的0会被当作真实信号参与评分。
func nanWarmup(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}
