package factor

import (
	"fmt"

	"github.com/StudioSol/set"
)

// FactorSpec 描述一个已注册的因子：名称、相对权重、评分规则及其参数。
// 注册后只有权重允许更新，其余字段不可变。
type FactorSpec struct {
	Name   string
	Weight float64
	Kind   RuleKind
	Params Params
}

// Registry 持有一次会话内声明的因子集合及其权重。
// 由调用方显式构造并传递，没有任何进程级的全局状态；
// 并行计算多个标的时各自持有自己的Registry即可，无需加锁。
type Registry struct {
	names *set.LinkedHashSetString // 按注册顺序保存因子名，保证遍历顺序确定
	specs map[string]FactorSpec
}

// NewRegistry 创建一个空的因子注册表。空注册表本身是合法的，
// 但合成（Combine）会拒绝在零因子的情况下继续。
func NewRegistry() *Registry {
	return &Registry{
		names: set.NewLinkedHashSetString(),
		specs: make(map[string]FactorSpec),
	}
}

// Register 注册一个因子。因子名重复、权重非正或规则参数越界时
// 立即返回配置错误，注册表保持不变。
func (r *Registry) Register(name string, weight float64, kind RuleKind, params Params) error {
	if name == "" {
		return fmt.Errorf("%w: factor name must not be empty", ErrConfiguration)
	}
	if _, exists := r.specs[name]; exists {
		return fmt.Errorf("%w: factor %q already registered", ErrConfiguration, name)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: factor %q weight must be positive, got %f", ErrConfiguration, name, weight)
	}
	if err := params.Validate(kind); err != nil {
		return fmt.Errorf("factor %q: %w", name, err)
	}

	r.names.Add(name)
	r.specs[name] = FactorSpec{Name: name, Weight: weight, Kind: kind, Params: params}
	return nil
}

// UpdateWeight 更新已注册因子的权重。未知的因子名或非正权重是配置错误。
func (r *Registry) UpdateWeight(name string, weight float64) error {
	spec, exists := r.specs[name]
	if !exists {
		return fmt.Errorf("%w: factor %q not registered", ErrConfiguration, name)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: factor %q weight must be positive, got %f", ErrConfiguration, name, weight)
	}

	spec.Weight = weight
	r.specs[name] = spec
	return nil
}

// ActiveFactors 返回当前的{因子名 → 权重}映射的副本。
func (r *Registry) ActiveFactors() map[string]float64 {
	weights := make(map[string]float64, len(r.specs))
	for name, spec := range r.specs {
		weights[name] = spec.Weight
	}
	return weights
}

// Names 按注册顺序返回所有因子名。
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.names.Iter() {
		names = append(names, name)
	}
	return names
}

// Spec 返回指定因子的完整描述。
func (r *Registry) Spec(name string) (FactorSpec, bool) {
	spec, exists := r.specs[name]
	return spec, exists
}

// Len 返回已注册的因子数量。
func (r *Registry) Len() int {
	return len(r.specs)
}
