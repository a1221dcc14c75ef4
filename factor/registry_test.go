package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register("macd", 2.5, RuleTrend, DefaultParams(RuleTrend)))
	assert.Equal(t, 1, registry.Len())

	t.Run("duplicate name", func(t *testing.T) {
		err := registry.Register("macd", 1.0, RuleTrend, DefaultParams(RuleTrend))
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("empty name", func(t *testing.T) {
		err := registry.Register("", 1.0, RuleTrend, DefaultParams(RuleTrend))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		assert.ErrorIs(t, registry.Register("rsi", 0, RuleOscillator,
			DefaultParams(RuleOscillator)), ErrConfiguration)
		assert.ErrorIs(t, registry.Register("rsi", -1, RuleOscillator,
			DefaultParams(RuleOscillator)), ErrConfiguration)
	})

	t.Run("invalid params rejected eagerly", func(t *testing.T) {
		err := registry.Register("rsi", 1.8, RuleOscillator,
			Params{Period: 14, Overbought: 30, Oversold: 70})
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Equal(t, 1, registry.Len())
	})
}

func TestRegistryNamesOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("volatility", 0.8, RuleVolatility, DefaultParams(RuleVolatility)))
	require.NoError(t, registry.Register("macd", 2.5, RuleTrend, DefaultParams(RuleTrend)))
	require.NoError(t, registry.Register("cci", 1.5, RuleChannel, DefaultParams(RuleChannel)))

	// 遍历顺序是注册顺序，不是字典序
	assert.Equal(t, []string{"volatility", "macd", "cci"}, registry.Names())
}

func TestRegistryUpdateWeight(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("momentum", 1.2, RuleMomentum, DefaultParams(RuleMomentum)))

	require.NoError(t, registry.UpdateWeight("momentum", 2.0))
	spec, ok := registry.Spec("momentum")
	require.True(t, ok)
	assert.Equal(t, 2.0, spec.Weight)

	assert.ErrorIs(t, registry.UpdateWeight("unknown", 1.0), ErrConfiguration)
	assert.ErrorIs(t, registry.UpdateWeight("momentum", 0), ErrConfiguration)
}

func TestRegistryActiveFactors(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("macd", 2.5, RuleTrend, DefaultParams(RuleTrend)))
	require.NoError(t, registry.Register("rsi", 1.8, RuleOscillator, DefaultParams(RuleOscillator)))

	weights := registry.ActiveFactors()
	assert.Equal(t, map[string]float64{"macd": 2.5, "rsi": 1.8}, weights)

	// 返回的是副本，修改它不影响注册表
	weights["macd"] = 99
	spec, _ := registry.Spec("macd")
	assert.Equal(t, 2.5, spec.Weight)
}

func TestParseOptions(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		p, err := ParseOptions(RuleOscillator, map[string]float64{
			"period":     7,
			"overbought": 80,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, p.Period)
		assert.Equal(t, 80.0, p.Overbought)
		assert.Equal(t, 30.0, p.Oversold) // 未给出的配置项取默认值
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := ParseOptions(RuleTrend, map[string]float64{"window": 10})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseOptions(RuleKind("magic"), nil)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("out of range value", func(t *testing.T) {
		_, err := ParseOptions(RuleTrend, map[string]float64{"decay_rate": 1.5})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("nil options give defaults", func(t *testing.T) {
		p, err := ParseOptions(RuleBand, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultParams(RuleBand), p)
	})
}
