package factor

import "fmt"

// RuleKind 是评分规则的枚举类型。每个因子家族对应一个固定的规则实现，
// 扩展方式是新增一个枚举值和对应的实现，而不是运行时替换函数。
type RuleKind string

const (
	// RuleTrend MACD类趋势规则：交叉方向 ×（时间衰减项 + 柱状图强度项）
	RuleTrend RuleKind = "trend"
	// RuleOscillator RSI类超买超卖规则：分段线性映射到[-1, 1]
	RuleOscillator RuleKind = "oscillator"
	// RuleMomentum 动量规则：回看窗口内的涨跌幅按固定尺度归一
	RuleMomentum RuleKind = "momentum"
	// RuleVolatility 波动率规则：收益率滚动标准差的Z分数取负
	RuleVolatility RuleKind = "volatility"
	// RuleChannel CCI类通道规则：±上下轨之外按超买超卖给分
	RuleChannel RuleKind = "channel"
	// RuleBand 布林带规则：%B位置分段给分并按带宽调节强度
	RuleBand RuleKind = "band"
)

// Params 定义了评分规则的参数集合。不同规则家族只使用其中的一部分字段，
// Validate按规则类型检查对应字段的取值范围。
type Params struct {
	Period     int     // 指标周期（trend衰减基准 / oscillator、channel、band周期）
	DecayRate  float64 // trend：时间衰减率，取值[0, 1]，每经过Period根K线持续项乘以该值
	Overbought float64 // oscillator：超买阈值，默认70
	Oversold   float64 // oscillator：超卖阈值，默认30
	Lookback   int     // momentum：涨跌幅回看窗口
	Scale      float64 // momentum：归一化常数（百分比），涨跌幅达到该值时得分饱和
	Window     int     // volatility：滚动标准差窗口
	UpperBand  float64 // channel：上轨，默认+100
	LowerBand  float64 // channel：下轨，默认-100
	Deviation  float64 // band：布林带标准差倍数，默认2.0
}

// DefaultParams 返回各规则家族的默认参数，取值与原始策略配置一致。
func DefaultParams(kind RuleKind) Params {
	switch kind {
	case RuleTrend:
		return Params{Period: 20, DecayRate: 0.5}
	case RuleOscillator:
		return Params{Period: 14, Overbought: 70, Oversold: 30}
	case RuleMomentum:
		return Params{Lookback: 20, Scale: 10}
	case RuleVolatility:
		return Params{Window: 20}
	case RuleChannel:
		return Params{Period: 14, UpperBand: 100, LowerBand: -100}
	case RuleBand:
		return Params{Period: 20, Deviation: 2.0}
	}
	return Params{}
}

// Validate 按规则类型检查参数取值，越界的参数在注册时立即报错。
func (p Params) Validate(kind RuleKind) error {
	switch kind {
	case RuleTrend:
		if p.Period <= 0 {
			return fmt.Errorf("%w: trend period must be positive, got %d", ErrConfiguration, p.Period)
		}
		if p.DecayRate < 0 || p.DecayRate > 1 {
			return fmt.Errorf("%w: decay rate must be in [0, 1], got %f", ErrConfiguration, p.DecayRate)
		}
	case RuleOscillator:
		if p.Period <= 0 {
			return fmt.Errorf("%w: oscillator period must be positive, got %d", ErrConfiguration, p.Period)
		}
		if p.Oversold <= 0 || p.Overbought >= 100 || p.Oversold >= 50 || p.Overbought <= 50 {
			return fmt.Errorf("%w: thresholds must satisfy 0 < oversold < 50 < overbought < 100, got %f/%f",
				ErrConfiguration, p.Oversold, p.Overbought)
		}
	case RuleMomentum:
		if p.Lookback <= 0 {
			return fmt.Errorf("%w: momentum lookback must be positive, got %d", ErrConfiguration, p.Lookback)
		}
		if p.Scale <= 0 {
			return fmt.Errorf("%w: momentum scale must be positive, got %f", ErrConfiguration, p.Scale)
		}
	case RuleVolatility:
		if p.Window <= 1 {
			return fmt.Errorf("%w: volatility window must be greater than 1, got %d", ErrConfiguration, p.Window)
		}
	case RuleChannel:
		if p.Period <= 0 {
			return fmt.Errorf("%w: channel period must be positive, got %d", ErrConfiguration, p.Period)
		}
		if p.UpperBand <= 0 || p.LowerBand >= 0 {
			return fmt.Errorf("%w: channel bands must satisfy lower < 0 < upper, got %f/%f",
				ErrConfiguration, p.LowerBand, p.UpperBand)
		}
	case RuleBand:
		if p.Period <= 0 {
			return fmt.Errorf("%w: band period must be positive, got %d", ErrConfiguration, p.Period)
		}
		if p.Deviation <= 0 {
			return fmt.Errorf("%w: band deviation must be positive, got %f", ErrConfiguration, p.Deviation)
		}
	default:
		return fmt.Errorf("%w: unknown rule kind %q", ErrConfiguration, kind)
	}
	return nil
}

// ruleOptions 列出每个规则家族可识别的配置项名称。
var ruleOptions = map[RuleKind]map[string]bool{
	RuleTrend:      {"period": true, "decay_rate": true},
	RuleOscillator: {"period": true, "overbought": true, "oversold": true},
	RuleMomentum:   {"lookback": true, "scale": true},
	RuleVolatility: {"window": true},
	RuleChannel:    {"period": true, "upper_band": true, "lower_band": true},
	RuleBand:       {"period": true, "deviation": true},
}

// ParseOptions 从名称到数值的配置映射构造参数。未知的配置项名是错误，
// 未给出的配置项取默认值，数值范围在Validate中检查。
func ParseOptions(kind RuleKind, options map[string]float64) (Params, error) {
	recognized, ok := ruleOptions[kind]
	if !ok {
		return Params{}, fmt.Errorf("%w: unknown rule kind %q", ErrConfiguration, kind)
	}

	p := DefaultParams(kind)
	for name, value := range options {
		if !recognized[name] {
			return Params{}, fmt.Errorf("%w: unknown option %q for rule %q", ErrConfiguration, name, kind)
		}
		switch name {
		case "period":
			p.Period = int(value)
		case "decay_rate":
			p.DecayRate = value
		case "overbought":
			p.Overbought = value
		case "oversold":
			p.Oversold = value
		case "lookback":
			p.Lookback = int(value)
		case "scale":
			p.Scale = value
		case "window":
			p.Window = int(value)
		case "upper_band":
			p.UpperBand = value
		case "lower_band":
			p.LowerBand = value
		case "deviation":
			p.Deviation = value
		}
	}

	if err := p.Validate(kind); err != nil {
		return Params{}, err
	}
	return p, nil
}
