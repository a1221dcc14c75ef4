package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itqwq/factorbot/factor"
	"github.com/itqwq/factorbot/model"
)

// testDataframe 生成一段确定性的合成行情：围绕10元的正弦波动加缓慢上行。
func testDataframe(size int) *model.Dataframe {
	df := &model.Dataframe{Symbol: "000878"}
	for i := 0; i < size; i++ {
		price := 10 + 0.5*math.Sin(float64(i)/5) + 0.01*float64(i)
		df.AppendCandle(model.Candle{
			Symbol: "000878",
			Open:   price,
			Close:  price,
			High:   price + 0.1,
			Low:    price - 0.1,
			Volume: 100000,
		})
	}
	return df
}

func assertWarmup(t *testing.T, values model.Series[float64], warmup int) {
	t.Helper()
	for i := 0; i < warmup; i++ {
		assert.True(t, math.IsNaN(values[i]), "index %d should be NaN", i)
	}
	for i := warmup; i < len(values); i++ {
		assert.False(t, math.IsNaN(values[i]), "index %d should be defined", i)
	}
}

func TestBuildTrend(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildTrend(df)
	require.NoError(t, err)
	require.NoError(t, ind.Validate())
	assert.Equal(t, 60, ind.Lenght())

	// MACD的预热期：26期慢线 + 9期信号线 - 2
	for _, name := range []string{"macd", "signal", "hist"} {
		column, err := ind.Column(name)
		require.NoError(t, err)
		assertWarmup(t, column, 33)
	}

	t.Run("hist is macd minus signal", func(t *testing.T) {
		macd, _ := ind.Column("macd")
		signal, _ := ind.Column("signal")
		hist, _ := ind.Column("hist")
		for i := 40; i < 60; i++ {
			assert.InDelta(t, macd[i]-signal[i], hist[i], 1e-9)
		}
	})
}

func TestBuildOscillator(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildOscillator(df, 14)
	require.NoError(t, err)

	values, err := ind.Column("value")
	require.NoError(t, err)
	assertWarmup(t, values, 14)

	for i := 14; i < 60; i++ {
		assert.GreaterOrEqual(t, values[i], 0.0)
		assert.LessOrEqual(t, values[i], 100.0)
	}
}

func TestBuildMomentum(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildMomentum(df, 20)
	require.NoError(t, err)

	values, err := ind.Column("value")
	require.NoError(t, err)
	assertWarmup(t, values, 20)

	// 回看20根K线的涨跌幅（百分比）
	expected := (df.Close[20]/df.Close[0] - 1) * 100
	assert.InDelta(t, expected, values[20], 1e-9)
}

func TestBuildVolatility(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildVolatility(df, 20)
	require.NoError(t, err)

	values, err := ind.Column("value")
	require.NoError(t, err)
	assertWarmup(t, values, 20)

	// 标准差非负
	for i := 20; i < 60; i++ {
		assert.GreaterOrEqual(t, values[i], 0.0)
	}
}

func TestBuildChannel(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildChannel(df, 14)
	require.NoError(t, err)

	values, err := ind.Column("value")
	require.NoError(t, err)
	assertWarmup(t, values, 13)
}

func TestBuildBand(t *testing.T) {
	df := testDataframe(60)

	ind, err := BuildBand(df, 20, 2.0)
	require.NoError(t, err)
	require.NoError(t, ind.Validate())

	upper, _ := ind.Column("upper")
	mid, _ := ind.Column("mid")
	lower, _ := ind.Column("lower")
	closes, _ := ind.Column("close")

	assertWarmup(t, upper, 19)
	assert.Equal(t, df.Close, closes)

	// 预热之后上轨 ≥ 中轨 ≥ 下轨
	for i := 19; i < 60; i++ {
		assert.GreaterOrEqual(t, upper[i], mid[i])
		assert.GreaterOrEqual(t, mid[i], lower[i])
	}
}

func TestBuildDispatch(t *testing.T) {
	df := testDataframe(60)

	for _, kind := range []factor.RuleKind{
		factor.RuleTrend, factor.RuleOscillator, factor.RuleMomentum,
		factor.RuleVolatility, factor.RuleChannel, factor.RuleBand,
	} {
		ind, err := Build(kind, df, factor.DefaultParams(kind))
		require.NoError(t, err, "kind=%s", kind)
		assert.Equal(t, 60, ind.Lenght(), "kind=%s", kind)
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Build(factor.RuleKind("magic"), df, factor.Params{})
		assert.ErrorIs(t, err, factor.ErrConfiguration)
	})
}

func TestBuildInsufficientData(t *testing.T) {
	short := testDataframe(10)

	_, err := BuildTrend(short)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)

	_, err = BuildOscillator(short, 14)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)

	_, err = BuildMomentum(short, 20)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)

	_, err = BuildVolatility(short, 20)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)

	_, err = BuildChannel(short, 14)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)

	_, err = BuildBand(short, 20, 2.0)
	assert.ErrorIs(t, err, factor.ErrInsufficientData)
}

func TestNanWarmup(t *testing.T) {
	values := []float64{0, 0, 3, 4}

	out := nanWarmup(values, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 3.0, out[2])

	// 原切片不被修改
	assert.Equal(t, 0.0, values[0])

	// n超过长度时全部置NaN，不越界
	out = nanWarmup(values, 10)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}
