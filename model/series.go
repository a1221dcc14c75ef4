// 定义model包
package model

import (
	"golang.org/x/exp/constraints" // 引入constraints包，提供泛型约束
)

// Series是一个时间序列数据的泛型切片，按K线位置一一对齐。
// 因子得分、指标数值等都以Series[float64]的形式在各组件之间传递。
type Series[T constraints.Ordered] []T

// Values返回序列中的所有值
func (s Series[T]) Values() []T {
	return s
}

// Lenght返回序列中值的数量
func (s Series[T]) Lenght() int {
	return len(s)
}

// Last返回序列中给定过去索引位置的最后一个值
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues返回序列中给定大小的最后几个值
func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Crossover判断序列的最后一个值是否上穿参考序列（金叉）
func (s Series[T]) Crossover(ref Series[T]) bool {
	return s.Last(0) > ref.Last(0) && s.Last(1) <= ref.Last(1)
}

// Crossunder判断序列的最后一个值是否下穿参考序列（死叉）
func (s Series[T]) Crossunder(ref Series[T]) bool {
	return s.Last(0) <= ref.Last(0) && s.Last(1) > ref.Last(1)
}

// Cross判断序列的最后一个值是否与参考序列存在交叉
func (s Series[T]) Cross(ref Series[T]) bool {
	return s.Crossover(ref) || s.Crossunder(ref)
}

// CrossoverAt判断序列在位置i处是否上穿参考序列。
// 与Crossover不同，它针对任意K线位置，趋势因子逐根扫描交叉点时使用。
// i == 0 没有前一根K线，视为没有交叉。
func (s Series[T]) CrossoverAt(ref Series[T], i int) bool {
	if i <= 0 || i >= len(s) || i >= len(ref) {
		return false
	}
	return s[i] > ref[i] && s[i-1] <= ref[i-1]
}

// CrossunderAt判断序列在位置i处是否下穿参考序列。
func (s Series[T]) CrossunderAt(ref Series[T], i int) bool {
	if i <= 0 || i >= len(s) || i >= len(ref) {
		return false
	}
	return s[i] <= ref[i] && s[i-1] > ref[i-1]
}
