package factor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/itqwq/factorbot/model"
)

// DefaultMinOverlap 是计算一对因子相关性所需的最少重叠样本数。
// 重叠样本低于该值时相关系数不可靠，整对从报告中剔除。
const DefaultMinOverlap = 3

// CorrelationPair 描述一对因子之间的皮尔逊相关性。
type CorrelationPair struct {
	A           string  // 因子名，按字典序A < B
	B           string
	Coefficient float64 // 相关系数，区间[-1, 1]
	Samples     int     // 参与计算的重叠样本数
	Flagged     bool    // |系数| ≥ 阈值，提示两个因子冗余
}

// CorrelationReport 是相关性审计的诊断结果。它只用于提示调用方
// 手动裁剪冗余因子，绝不反过来修改权重或得分。
type CorrelationReport struct {
	Threshold  float64
	MinOverlap int
	Pairs      []CorrelationPair
}

// Audit 计算每两个因子的标准化得分序列之间的皮尔逊相关系数。
// 只在两个序列都非NaN的K线上计算；重叠样本少于minOverlap的因子对
// 不进入报告（minOverlap传0或负数时取DefaultMinOverlap）。
// |系数| ≥ threshold 的因子对会被标记为冗余。
func Audit(scores map[string]model.Series[float64], threshold float64, minOverlap int) (CorrelationReport, error) {
	if threshold < 0 || threshold > 1 {
		return CorrelationReport{}, fmt.Errorf("%w: correlation threshold must be in [0, 1], got %f",
			ErrConfiguration, threshold)
	}
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}

	names := lo.Keys(scores)
	sort.Strings(names)

	for _, name := range names {
		if len(scores[name]) != len(scores[names[0]]) {
			return CorrelationReport{}, fmt.Errorf("%w: factor %q has length %d, want %d",
				ErrConfiguration, name, len(scores[name]), len(scores[names[0]]))
		}
	}

	report := CorrelationReport{Threshold: threshold, MinOverlap: minOverlap}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := scores[names[i]], scores[names[j]]

			// 收集两边同时有定义的K线
			var xs, ys []float64
			for t := range a {
				if math.IsNaN(a[t]) || math.IsNaN(b[t]) {
					continue
				}
				xs = append(xs, a[t])
				ys = append(ys, b[t])
			}
			if len(xs) < minOverlap {
				continue
			}

			coefficient := stat.Correlation(xs, ys, nil)
			if math.IsNaN(coefficient) {
				// 某一边在重叠区间内是常数，相关性未定义，剔除
				continue
			}

			report.Pairs = append(report.Pairs, CorrelationPair{
				A:           names[i],
				B:           names[j],
				Coefficient: coefficient,
				Samples:     len(xs),
				Flagged:     math.Abs(coefficient) >= threshold,
			})
		}
	}
	return report, nil
}

// Flagged 返回所有被标记为冗余的因子对。
func (r CorrelationReport) Flagged() []CorrelationPair {
	return lo.Filter(r.Pairs, func(p CorrelationPair, _ int) bool {
		return p.Flagged
	})
}

// String 生成并返回相关性报告的表格字符串。
func (r CorrelationReport) String() string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"Factor A", "Factor B", "Corr", "Samples", "Redundant"})

	data := make([][]string, 0, len(r.Pairs))
	for _, pair := range r.Pairs {
		redundant := ""
		if pair.Flagged {
			redundant = "yes"
		}
		data = append(data, []string{
			pair.A,
			pair.B,
			fmt.Sprintf("%.4f", pair.Coefficient),
			fmt.Sprintf("%d", pair.Samples),
			redundant,
		})
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})
	table.Render()
	return tableString.String()
}
