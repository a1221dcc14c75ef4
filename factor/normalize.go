package factor

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/itqwq/factorbot/model"
)

// Normalize 把一个因子得分序列做Z分数标准化：(值 - 均值) / 标准差。
// window大于0且小于序列长度时按滚动窗口计算，否则使用全样本统计量。
// 窗口内非NaN样本不足两个、或标准差为零（走平的因子）时，该位置输出0
// 而不是除零或NaN——走平的因子不贡献信号，但也不是错误。
// NaN输入原样输出NaN。无任何跨调用的隐藏状态，同样输入必得同样输出。
func Normalize(values model.Series[float64], window int) model.Series[float64] {
	if window > 0 && window < len(values) {
		return normalizeRolling(values, window)
	}
	return normalizeWhole(values)
}

// normalizeWhole 用整个可用样本的均值和标准差做标准化。
func normalizeWhole(values model.Series[float64]) model.Series[float64] {
	clean := lo.Filter(values, func(v float64, _ int) bool {
		return !math.IsNaN(v)
	})

	out := make(model.Series[float64], len(values))

	// 非NaN样本不足两个时没有可用的离散度，所有有定义的位置输出0
	if len(clean) < 2 {
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = math.NaN()
			}
		}
		return out
	}

	mean, stddev := stat.MeanStdDev(clean, nil)
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case stddev <= zeroVarianceEps:
			out[i] = 0
		default:
			out[i] = (v - mean) / stddev
		}
	}
	return out
}

// normalizeRolling 用增量累加器（滚动和、滚动平方和）维护窗口统计量，
// 整体代价O(n)而不是每个位置重算整个窗口的O(n·w)。
func normalizeRolling(values model.Series[float64], window int) model.Series[float64] {
	acc := newRollingStat(window)
	out := make(model.Series[float64], len(values))
	for i, v := range values {
		acc.push(v)
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		mean, stddev, ok := acc.meanStdDev()
		if !ok {
			out[i] = 0
			continue
		}
		out[i] = (v - mean) / stddev
	}
	return out
}

// 浮点累减会留下微小残差，方差小于该值时按零方差处理
const zeroVarianceEps = 1e-12

// rollingStat 是一个NaN感知的滚动统计累加器，维护最近window个值的
// 和与平方和。NaN占据窗口位置但不计入统计量。
type rollingStat struct {
	window int
	buf    []float64
	next   int
	full   bool

	sum   float64
	sumSq float64
	count int
}

func newRollingStat(window int) *rollingStat {
	return &rollingStat{window: window, buf: make([]float64, window)}
}

// push 把一个新值加入窗口，必要时逐出最旧的值。
func (r *rollingStat) push(v float64) {
	if r.full {
		if old := r.buf[r.next]; !math.IsNaN(old) {
			r.sum -= old
			r.sumSq -= old * old
			r.count--
		}
	}
	r.buf[r.next] = v
	r.next++
	if r.next == r.window {
		r.next = 0
		r.full = true
	}
	if !math.IsNaN(v) {
		r.sum += v
		r.sumSq += v * v
		r.count++
	}
}

// meanStdDev 返回窗口内非NaN样本的均值和样本标准差。
// 样本不足两个或方差为零时ok为false。
func (r *rollingStat) meanStdDev() (mean, stddev float64, ok bool) {
	if r.count < 2 {
		return 0, 0, false
	}
	n := float64(r.count)
	mean = r.sum / n
	variance := (r.sumSq - r.sum*r.sum/n) / (n - 1)
	if variance <= zeroVarianceEps {
		return mean, 0, false
	}
	return mean, math.Sqrt(variance), true
}
