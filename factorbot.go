package factorbot

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/itqwq/factorbot/factor"
	"github.com/itqwq/factorbot/indicator"
	"github.com/itqwq/factorbot/model"
)

// Engine 是多因子信号合成引擎的门面：对一个数据帧依次执行
// 指标构建 → 因子评分 → 标准化 → 加权合成 →（可选的）相关性审计，
// 返回综合得分序列和诊断信息。引擎本身不取数、不下单、不落盘，
// 综合得分如何触发买卖完全由下游策略层决定。
//
// 引擎不持有跨调用的可变状态，多个标的并行计算时各自构造
// 自己的Registry和Engine即可，无需加锁。
type Engine struct {
	registry        *factor.Registry
	normalizeWindow int // 0表示全样本标准化
	auditThreshold  float64
	auditMinOverlap int
	auditEnabled    bool
}

// Option 是Engine的可选配置项。
type Option func(*Engine)

// WithNormalizeWindow 设置标准化的滚动窗口，0或超过样本长度时用全样本。
func WithNormalizeWindow(window int) Option {
	return func(e *Engine) {
		e.normalizeWindow = window
	}
}

// WithAudit 开启相关性审计，|相关系数| ≥ threshold 的因子对会被标记。
func WithAudit(threshold float64, minOverlap int) Option {
	return func(e *Engine) {
		e.auditEnabled = true
		e.auditThreshold = threshold
		e.auditMinOverlap = minOverlap
	}
}

// NewEngine 用调用方自己的因子注册表创建引擎。
func NewEngine(registry *factor.Registry, options ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is required", factor.ErrConfiguration)
	}

	engine := &Engine{
		registry:       registry,
		auditThreshold: 0.8,
	}
	for _, option := range options {
		option(engine)
	}
	return engine, nil
}

// Result 是一次合成的全部输出。
type Result struct {
	Composite  model.Series[float64]            // 综合得分序列，与K线1:1对齐
	Scores     map[string]model.Series[float64] // 各因子的原始得分
	Normalized map[string]model.Series[float64] // 各因子标准化后的得分
	Report     *factor.CorrelationReport        // 相关性审计报告，未开启审计时为nil
}

// Run 对一个数据帧执行一次完整的合成。配置错误立即返回；
// 预热期的NaN按K线传递到综合得分里，由下游自行决定如何处理。
func (e *Engine) Run(df *model.Dataframe) (*Result, error) {
	if e.registry.Len() == 0 {
		return nil, fmt.Errorf("%w: no factors registered", factor.ErrConfiguration)
	}

	scores := make(map[string]model.Series[float64], e.registry.Len())
	normalized := make(map[string]model.Series[float64], e.registry.Len())

	for _, name := range e.registry.Names() {
		spec, _ := e.registry.Spec(name)

		ind, err := indicator.Build(spec.Kind, df, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", name, err)
		}

		raw, err := factor.Score(ind, spec.Kind, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", name, err)
		}

		scores[name] = raw
		normalized[name] = factor.Normalize(raw, e.normalizeWindow)
	}

	composite, err := factor.Combine(normalized, e.registry.ActiveFactors())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Composite:  composite,
		Scores:     scores,
		Normalized: normalized,
	}

	if e.auditEnabled {
		report, err := factor.Audit(normalized, e.auditThreshold, e.auditMinOverlap)
		if err != nil {
			return nil, err
		}
		result.Report = &report

		for _, pair := range report.Flagged() {
			log.WithFields(log.Fields{
				"factor_a": pair.A,
				"factor_b": pair.B,
				"corr":     pair.Coefficient,
			}).Warn("redundant factor pair detected")
		}
	}

	log.WithFields(log.Fields{
		"symbol":  df.Symbol,
		"candles": len(df.Close),
		"factors": e.registry.Len(),
	}).Info("composite pass finished")

	return result, nil
}
