package domain

import "github.com/shopspring/decimal"

// TrendDirection qualitative direction of price action.
type TrendDirection string

const (
	TrendDirectionBullish TrendDirection = "bullish"
	TrendDirectionBearish TrendDirection = "bearish"
	TrendDirectionNeutral TrendDirection = "neutral"
)

// Title returns a human-readable representation.
func (t TrendDirection) Title() string {
	switch t {
	case TrendDirectionBullish:
		return "Bullish"
	case TrendDirectionBearish:
		return "Bearish"
	default:
		return "Neutral"
	}
}

// BookBias order-book imbalance classification.
type BookBias string

const (
	BookBiasBuyWall  BookBias = "STRONG_BUY_WALL"
	BookBiasSellWall BookBias = "STRONG_SELL_WALL"
	BookBiasNeutral  BookBias = "NEUTRAL"
)

// imbalance ratio thresholds (top-10 bid volume / top-10 ask volume)
var (
	buyWallRatio  = decimal.NewFromFloat(1.5)
	sellWallRatio = decimal.NewFromFloat(0.6)
)

// BookBiasFromRatio classifies a bid/ask volume ratio.
func BookBiasFromRatio(ratio decimal.Decimal) BookBias {
	switch {
	case ratio.GreaterThan(buyWallRatio):
		return BookBiasBuyWall
	case ratio.LessThan(sellWallRatio):
		return BookBiasSellWall
	default:
		return BookBiasNeutral
	}
}
