// Package indicators derives the technical values fed into strategy
// proposals. It wraps the cinar/indicator library, converting between
// candle slices and the channel streams the library computes on.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
)

const (
	emaFastPeriod = 20
	emaSlowPeriod = 50
	rsiPeriod     = 14
	atrPeriod     = 14

	// MinCandles is the smallest history the slowest indicator needs.
	MinCandles = emaSlowPeriod
)

// Values holds the latest value of each tracked indicator.
type Values struct {
	EMA20 decimal.Decimal
	EMA50 decimal.Decimal
	RSI   decimal.Decimal
	ATR   decimal.Decimal
}

// Trend classifies price direction by comparing the fast and slow EMA.
func (v Values) Trend() domain.TrendDirection {
	switch {
	case v.EMA20.GreaterThan(v.EMA50):
		return domain.TrendDirectionBullish
	case v.EMA20.LessThan(v.EMA50):
		return domain.TrendDirectionBearish
	default:
		return domain.TrendDirectionNeutral
	}
}

// Compute calculates EMA20, EMA50, RSI and ATR over the series and
// returns the latest value of each. Input slices must be oldest first
// and of equal length.
func Compute(highs, lows, closes []float64) (Values, error) {
	if len(closes) < MinCandles {
		return Values{}, errors.Errorf("not enough candles: need at least %d, got %d", MinCandles, len(closes))
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return Values{}, errors.New("highs, lows and closes must have equal length")
	}

	ema20, err := lastEMA(closes, emaFastPeriod)
	if err != nil {
		return Values{}, err
	}
	ema50, err := lastEMA(closes, emaSlowPeriod)
	if err != nil {
		return Values{}, err
	}
	rsi, err := lastRSI(closes, rsiPeriod)
	if err != nil {
		return Values{}, err
	}
	atr, err := lastATR(highs, lows, closes, atrPeriod)
	if err != nil {
		return Values{}, err
	}

	return Values{
		EMA20: decimal.NewFromFloat(ema20),
		EMA50: decimal.NewFromFloat(ema50),
		RSI:   decimal.NewFromFloat(rsi),
		ATR:   decimal.NewFromFloat(atr),
	}, nil
}

func lastEMA(closes []float64, period int) (float64, error) {
	if len(closes) < period {
		return 0, errors.Errorf("not enough data points for EMA%d: need %d, got %d", period, period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
	if len(values) == 0 {
		return 0, errors.Errorf("EMA%d produced no values", period)
	}
	return values[len(values)-1], nil
}

func lastRSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, errors.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
	if len(values) == 0 {
		return 0, errors.New("RSI produced no values")
	}
	last := values[len(values)-1]
	// a flat series has zero average gain and loss, 0/0 comes out NaN
	if math.IsNaN(last) {
		return 50, nil
	}
	return last, nil
}

func lastATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, errors.Errorf("not enough data points for ATR: need %d, got %d", period+1, len(closes))
	}

	atr := volatility.NewAtrWithPeriod[float64](period)
	values := helper.ChanToSlice(atr.Compute(
		helper.SliceToChan(highs),
		helper.SliceToChan(lows),
		helper.SliceToChan(closes),
	))
	if len(values) == 0 {
		return 0, errors.New("ATR produced no values")
	}
	return values[len(values)-1], nil
}
