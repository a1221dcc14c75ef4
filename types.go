package factorbot

import (
	"github.com/itqwq/factorbot/factor"
	"github.com/itqwq/factorbot/model"
)

// 通过类型别名把内部包的核心类型集中到根包，外部调用时
// 无需逐个引用子包路径。
type (
	Candle            = model.Candle            // K线
	Dataframe         = model.Dataframe         // 按位置对齐的OHLCV数据帧
	Series            = model.Series[float64]   // 浮点时间序列
	IndicatorSeries   = model.IndicatorSeries   // 因子家族的指标输入
	Registry          = factor.Registry         // 因子注册表
	FactorSpec        = factor.FactorSpec       // 已注册因子的描述
	Params            = factor.Params           // 评分规则参数
	RuleKind          = factor.RuleKind         // 评分规则类型
	CorrelationReport = factor.CorrelationReport // 相关性审计报告
)

var (
	RuleTrend      = factor.RuleTrend      // MACD类趋势规则
	RuleOscillator = factor.RuleOscillator // RSI类超买超卖规则
	RuleMomentum   = factor.RuleMomentum   // 动量规则
	RuleVolatility = factor.RuleVolatility // 波动率规则
	RuleChannel    = factor.RuleChannel    // CCI类通道规则
	RuleBand       = factor.RuleBand       // 布林带%B规则

	NewRegistry   = factor.NewRegistry   // 创建因子注册表
	DefaultParams = factor.DefaultParams // 各规则家族的默认参数
	ParseOptions  = factor.ParseOptions  // 从配置映射构造规则参数

	ErrConfiguration    = factor.ErrConfiguration
	ErrInsufficientData = factor.ErrInsufficientData
)
