package metrics

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval 保存自助法估计的置信区间：
// 下限(Lower)、上限(Upper)、标准偏差(StdDev)和均值(Mean)。
// 下游策略层可以用它评估综合得分统计量的稳定性，
// 例如95%置信下综合得分均值落在[Lower, Upper]之间。
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap 用自助法（有放回重抽样）估计统计量的置信区间。
// values是原始样本（如一段综合得分序列），measure对每个重抽样本
// 计算关心的统计量（均值、中位数等），sampleSize是重抽次数，
// confidence是置信度（如0.95）。
func Bootstrap(values []float64, measure func([]float64) float64, sampleSize int,
	confidence float64) BootstrapInterval {
	var data []float64

	for i := 0; i < sampleSize; i++ {
		samples := make([]float64, len(values))
		for j := 0; j < len(values); j++ {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}

	tail := 1 - confidence
	sort.Float64s(data)
	mean, stdDev := stat.MeanStdDev(data, nil)
	upper := stat.Quantile(1-tail/2, stat.LinInterp, data, nil)
	lower := stat.Quantile(tail/2, stat.LinInterp, data, nil)

	return BootstrapInterval{
		Lower:  lower,
		Upper:  upper,
		StdDev: stdDev,
		Mean:   mean,
	}
}

// MeanInterval 估计一段得分序列均值的置信区间。
// 综合得分序列的预热段是NaN，重抽样前先剔除，否则NaN会污染所有统计量。
func MeanInterval(scores []float64, sampleSize int, confidence float64) BootstrapInterval {
	clean := lo.Filter(scores, func(v float64, _ int) bool {
		return !math.IsNaN(v)
	})
	if len(clean) == 0 {
		return BootstrapInterval{}
	}

	return Bootstrap(clean, func(samples []float64) float64 {
		return stat.Mean(samples, nil)
	}, sampleSize, confidence)
}
