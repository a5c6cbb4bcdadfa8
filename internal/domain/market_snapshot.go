package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Technicals indicator block derived from recent candles.
type Technicals struct {
	RSI       decimal.Decimal
	ATR       decimal.Decimal
	EMATrend  TrendDirection
	LastClose decimal.Decimal
	PrevClose decimal.Decimal
}

// OrderBookSummary aggregated top-of-book depth.
type OrderBookSummary struct {
	BidVolume decimal.Decimal
	AskVolume decimal.Decimal
	Ratio     decimal.Decimal
	Bias      BookBias
}

// MarketSnapshot point-in-time market data for one symbol, owned by a single
// pipeline pass and discarded afterwards.
type MarketSnapshot struct {
	Pair        Pair
	Price       decimal.Decimal
	Bid         decimal.Decimal
	Ask         decimal.Decimal
	SpreadRatio decimal.Decimal
	FundingRate decimal.Decimal
	Volume24h   decimal.Decimal
	Book        OrderBookSummary
	Technicals  Technicals
	FetchedAt   time.Time
}

// Validate checks the structural invariants a snapshot must satisfy before
// it may enter the pipeline.
func (s *MarketSnapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if s.Pair.From == "" || s.Pair.To == "" {
		return errors.New("snapshot has empty pair")
	}
	if s.Price.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("non-positive price %s for %s", s.Price, s.Pair.String())
	}
	if s.Bid.LessThanOrEqual(decimal.Zero) || s.Ask.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("non-positive bid/ask for %s", s.Pair.String())
	}
	if s.SpreadRatio.IsNegative() {
		return errors.Errorf("negative spread ratio for %s", s.Pair.String())
	}
	return nil
}

// RSIFloat returns the RSI as a float for rule thresholds.
func (s *MarketSnapshot) RSIFloat() float64 {
	return s.Technicals.RSI.InexactFloat64()
}

// PriceFloat returns the last price as a float for proposal levels.
func (s *MarketSnapshot) PriceFloat() float64 {
	return s.Price.InexactFloat64()
}
