package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caisyy0514/sentinel/internal/domain"
)

func risingSeries(n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100.0 + float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	return highs, lows, closes
}

func fallingSeries(n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		base := 200.0 - float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	return highs, lows, closes
}

func TestComputeRisingMarket(t *testing.T) {
	highs, lows, closes := risingSeries(100)

	values, err := Compute(highs, lows, closes)
	require.NoError(t, err)

	assert.True(t, values.EMA20.GreaterThan(values.EMA50),
		"fast EMA must lead in a rising market: ema20=%s ema50=%s", values.EMA20, values.EMA50)
	assert.Equal(t, domain.TrendDirectionBullish, values.Trend())
	assert.True(t, values.RSI.GreaterThan(decimal.NewFromInt(70)), "rsi=%s", values.RSI)
	assert.True(t, values.ATR.GreaterThan(decimal.Zero))
}

func TestComputeFallingMarket(t *testing.T) {
	highs, lows, closes := fallingSeries(100)

	values, err := Compute(highs, lows, closes)
	require.NoError(t, err)

	assert.True(t, values.EMA50.GreaterThan(values.EMA20))
	assert.Equal(t, domain.TrendDirectionBearish, values.Trend())
	assert.True(t, values.RSI.LessThan(decimal.NewFromInt(30)), "rsi=%s", values.RSI)
}

func TestComputeFlatMarketIsNeutral(t *testing.T) {
	n := 100
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 100, 100, 100
	}

	values, err := Compute(highs, lows, closes)
	require.NoError(t, err)

	assert.Equal(t, domain.TrendDirectionNeutral, values.Trend())
}

func TestComputeRejectsShortSeries(t *testing.T) {
	highs, lows, closes := risingSeries(MinCandles - 1)

	_, err := Compute(highs, lows, closes)
	assert.Error(t, err)
}

func TestComputeRejectsMismatchedLengths(t *testing.T) {
	highs, lows, closes := risingSeries(100)

	_, err := Compute(highs[:99], lows, closes)
	assert.Error(t, err)
}
