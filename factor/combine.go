package factor

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/itqwq/factorbot/model"
)

// Combine 把标准化后的因子得分按权重合成为单一的综合得分序列。
// 每根K线上：composite[t] = Σ(weight_f × score_f[t]) / Σ weight_f，
// 其中分母只累计该K线上得分非NaN的因子——某个因子还在预热期时，
// 剩余因子的权重在该K线上重新归一，综合信号不会被单个因子拉空。
// 只有当所有因子在同一根K线上都是NaN时，composite[t]才是NaN。
//
// 得分映射与权重映射必须一一对应且各序列等长，否则返回配置错误。
// 相同的输入永远得到逐位一致的输出（求和按因子名排序进行）。
func Combine(scores map[string]model.Series[float64], weights map[string]float64) (model.Series[float64], error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no factors registered", ErrConfiguration)
	}

	for name := range scores {
		if _, ok := weights[name]; !ok {
			return nil, fmt.Errorf("%w: factor %q has scores but no weight", ErrConfiguration, name)
		}
	}
	for name, weight := range weights {
		if _, ok := scores[name]; !ok {
			return nil, fmt.Errorf("%w: factor %q has weight but no scores", ErrConfiguration, name)
		}
		if weight <= 0 {
			return nil, fmt.Errorf("%w: factor %q weight must be positive, got %f", ErrConfiguration, name, weight)
		}
	}

	// 浮点加法不满足结合律，固定因子遍历顺序保证结果逐位确定
	names := lo.Keys(scores)
	sort.Strings(names)

	size := len(scores[names[0]])
	for _, name := range names {
		if len(scores[name]) != size {
			return nil, fmt.Errorf("%w: factor %q has length %d, want %d",
				ErrConfiguration, name, len(scores[name]), size)
		}
	}

	composite := make(model.Series[float64], size)
	for t := 0; t < size; t++ {
		var weightedSum, weightSum float64
		for _, name := range names {
			v := scores[name][t]
			if math.IsNaN(v) {
				continue
			}
			weightedSum += weights[name] * v
			weightSum += weights[name]
		}

		if weightSum == 0 {
			composite[t] = math.NaN()
			continue
		}
		composite[t] = weightedSum / weightSum
	}
	return composite, nil
}
