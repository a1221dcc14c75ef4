package factor

import "errors"

// ErrConfiguration 表示因子注册或合成时的配置错误：重复的因子名、
// 非正的权重、越界的规则参数、得分与权重映射不一致等。
// 配置错误在注册或合成开始时立即返回，绝不静默修正。
var ErrConfiguration = errors.New("invalid factor configuration")

// ErrInsufficientData 表示结构上不可能完成的请求，例如指标周期大于
// 整个输入序列的长度。普通预热期缺口不属于此类错误，按K线输出NaN。
var ErrInsufficientData = errors.New("insufficient data")
