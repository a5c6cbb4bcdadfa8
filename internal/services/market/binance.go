package market

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/services/market/indicators"
)

// BinanceSource builds snapshots from the Binance USDT-margined futures API.
type BinanceSource struct {
	client     *futures.Client
	timeframe  string
	klineDepth int
}

// NewBinanceSource creates a source for the given kline settings.
func NewBinanceSource(client *futures.Client, timeframe string, klineDepth int) *BinanceSource {
	return &BinanceSource{
		client:     client,
		timeframe:  timeframe,
		klineDepth: klineDepth,
	}
}

// Snapshot fetches candles, book depth, funding and 24h stats for pair.
func (s *BinanceSource) Snapshot(ctx context.Context, pair domain.Pair) (*domain.MarketSnapshot, error) {
	symbol := pair.Symbol()

	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(s.timeframe).
		Limit(s.klineDepth).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", pair.String())
	}
	if len(klines) < 2 {
		return nil, errors.Errorf("not enough klines returned for %s", pair.String())
	}

	highs := make([]float64, len(klines))
	lows := make([]float64, len(klines))
	closes := make([]float64, len(klines))
	for i, k := range klines {
		if highs[i], err = strconv.ParseFloat(k.High, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price at index %d", i)
		}
		if lows[i], err = strconv.ParseFloat(k.Low, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price at index %d", i)
		}
		if closes[i], err = strconv.ParseFloat(k.Close, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
	}

	values, err := indicators.Compute(highs, lows, closes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to calculate indicators for %s", pair.String())
	}

	depth, err := s.client.NewDepthService().
		Symbol(symbol).
		Limit(depthLevels).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch order book from Binance for %s", pair.String())
	}
	if len(depth.Bids) == 0 || len(depth.Asks) == 0 {
		return nil, errors.Errorf("empty order book for %s", pair.String())
	}

	bid, err := decimal.NewFromString(depth.Bids[0].Price)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse best bid")
	}
	ask, err := decimal.NewFromString(depth.Asks[0].Price)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse best ask")
	}

	bidVolume := decimal.Zero
	for _, level := range depth.Bids {
		qty, err := decimal.NewFromString(level.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse bid quantity")
		}
		bidVolume = bidVolume.Add(qty)
	}
	askVolume := decimal.Zero
	for _, level := range depth.Asks {
		qty, err := decimal.NewFromString(level.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse ask quantity")
		}
		askVolume = askVolume.Add(qty)
	}

	premium, err := s.client.NewPremiumIndexService().
		Symbol(symbol).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch funding rate from Binance for %s", pair.String())
	}
	funding := decimal.Zero
	if len(premium) > 0 {
		funding, err = decimal.NewFromString(premium[0].LastFundingRate)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse funding rate")
		}
	}

	stats, err := s.client.NewListPriceChangeStatsService().
		Symbol(symbol).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch 24h stats from Binance for %s", pair.String())
	}
	if len(stats) == 0 {
		return nil, errors.Errorf("no 24h stats for %s", pair.String())
	}
	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse last price")
	}
	volume24h, err := decimal.NewFromString(stats[0].QuoteVolume)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse 24h volume")
	}

	return &domain.MarketSnapshot{
		Pair:        pair,
		Price:       price,
		Bid:         bid,
		Ask:         ask,
		SpreadRatio: spreadRatio(bid, ask),
		FundingRate: funding,
		Volume24h:   volume24h,
		Book:        summarizeBook(bidVolume, askVolume),
		Technicals: domain.Technicals{
			RSI:       values.RSI,
			ATR:       values.ATR,
			EMATrend:  values.Trend(),
			LastClose: decimal.NewFromFloat(closes[len(closes)-1]),
			PrevClose: decimal.NewFromFloat(closes[len(closes)-2]),
		},
		FetchedAt: time.Now(),
	}, nil
}
