package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/services/market/indicators"
)

// BybitSource builds snapshots from the Bybit V5 linear (USDT perpetual)
// market API.
type BybitSource struct {
	client     *bybit.Client
	timeframe  string
	klineDepth int
}

// NewBybitSource creates a source for the given kline settings.
func NewBybitSource(client *bybit.Client, timeframe string, klineDepth int) *BybitSource {
	return &BybitSource{
		client:     client,
		timeframe:  timeframe,
		klineDepth: klineDepth,
	}
}

// Snapshot fetches candles, tickers and book depth for pair.
func (s *BybitSource) Snapshot(ctx context.Context, pair domain.Pair) (*domain.MarketSnapshot, error) {
	interval, err := convertIntervalToBybit(s.timeframe)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid interval: %s", s.timeframe)
	}

	symbol := bybit.SymbolV5(pair.Symbol())
	limit := s.klineDepth

	klineRes, err := s.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Linear,
		Symbol:   symbol,
		Interval: bybit.Interval(interval),
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Bybit for %s", pair.String())
	}
	if klineRes == nil || len(klineRes.Result.List) < 2 {
		return nil, errors.Errorf("not enough kline data returned from Bybit for %s", pair.String())
	}

	// Bybit returns newest first, indicators need oldest first
	list := klineRes.Result.List
	highs := make([]float64, len(list))
	lows := make([]float64, len(list))
	closes := make([]float64, len(list))
	for i, k := range list {
		j := len(list) - 1 - i
		if highs[j], err = strconv.ParseFloat(k.High, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price at index %d", i)
		}
		if lows[j], err = strconv.ParseFloat(k.Low, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price at index %d", i)
		}
		if closes[j], err = strconv.ParseFloat(k.Close, 64); err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
	}

	values, err := indicators.Compute(highs, lows, closes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to calculate indicators for %s", pair.String())
	}

	tickerRes, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Linear,
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch tickers from Bybit for %s", pair.String())
	}
	if tickerRes == nil || len(tickerRes.Result.LinearInverse.List) == 0 {
		return nil, errors.Errorf("bybit API returned empty tickers for %s", pair.String())
	}
	ticker := tickerRes.Result.LinearInverse.List[0]

	price, err := decimal.NewFromString(ticker.LastPrice)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse last price")
	}
	bid, err := decimal.NewFromString(ticker.Bid1Price)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse best bid")
	}
	ask, err := decimal.NewFromString(ticker.Ask1Price)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse best ask")
	}
	funding, err := decimal.NewFromString(ticker.FundingRate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse funding rate")
	}
	volume24h, err := decimal.NewFromString(ticker.Turnover24H)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse 24h turnover")
	}

	depthLimit := depthLevels
	bookRes, err := s.client.V5().Market().GetOrderbook(bybit.V5GetOrderbookParam{
		Category: bybit.CategoryV5Linear,
		Symbol:   symbol,
		Limit:    &depthLimit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch order book from Bybit for %s", pair.String())
	}
	if bookRes == nil || len(bookRes.Result.Bids) == 0 || len(bookRes.Result.Asks) == 0 {
		return nil, errors.Errorf("empty order book for %s", pair.String())
	}

	bidVolume := decimal.Zero
	for _, level := range bookRes.Result.Bids {
		qty, err := decimal.NewFromString(level.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse bid quantity")
		}
		bidVolume = bidVolume.Add(qty)
	}
	askVolume := decimal.Zero
	for _, level := range bookRes.Result.Asks {
		qty, err := decimal.NewFromString(level.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse ask quantity")
		}
		askVolume = askVolume.Add(qty)
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

// convertIntervalToBybit converts standard interval format to Bybit
// format: "1m" -> "1", "1h" -> "60", "1d" -> "D".
func convertIntervalToBybit(interval string) (string, error) {
	if len(interval) < 2 {
		return "", fmt.Errorf("invalid interval format: %s", interval)
	}

	unit := interval[len(interval)-1]
	numberPart := interval[:len(interval)-1]

	switch unit {
	case 'm':
		return numberPart, nil
	case 'h':
		n, err := strconv.Atoi(numberPart)
		if err != nil {
			return "", fmt.Errorf("invalid interval number: %s", interval)
		}
		return strconv.Itoa(n * 60), nil
	case 'd':
		return "D", nil
	case 'w':
		return "W", nil
	default:
		return "", fmt.Errorf("unsupported interval unit: %c", unit)
	}
}
