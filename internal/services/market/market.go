// Package market collects point-in-time snapshots of futures market data
// from the supported exchanges.
package market

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/caisyy0514/sentinel/internal/domain"
)

const (
	fetchTimeout = 30 * time.Second

	// public market data endpoints tolerate a few requests per second
	requestsPerSecond = 5
	requestBurst      = 5

	depthLevels = 10
)

// Source produces a raw snapshot for one pair from a single exchange.
type Source interface {
	Snapshot(ctx context.Context, pair domain.Pair) (*domain.MarketSnapshot, error)
}

// Collector wraps a Source with request pacing, a per-fetch timeout and
// snapshot validation. It is what the sweep loop fetches through.
type Collector struct {
	source  Source
	limiter *rate.Limiter
	timeout time.Duration
}

// NewCollector builds a collector with default pacing.
func NewCollector(source Source) *Collector {
	return &Collector{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		timeout: fetchTimeout,
	}
}

// Fetch retrieves a validated snapshot for pair.
func (c *Collector) Fetch(ctx context.Context, pair domain.Pair) (*domain.MarketSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter interrupted")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snapshot, err := c.source.Snapshot(ctx, pair)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot collect market data for %s", pair.String())
	}
	if err := snapshot.Validate(); err != nil {
		return nil, errors.Wrap(err, "snapshot rejected")
	}
	return snapshot, nil
}

// spreadRatio computes (ask-bid)/bid, zero when bid is zero.
func spreadRatio(bid, ask decimal.Decimal) decimal.Decimal {
	if bid.IsZero() {
		return decimal.Zero
	}
	return ask.Sub(bid).Div(bid)
}

// summarizeBook aggregates the top levels of both book sides and
// classifies the imbalance.
func summarizeBook(bidVolume, askVolume decimal.Decimal) domain.OrderBookSummary {
	ratio := decimal.Zero
	if askVolume.GreaterThan(decimal.Zero) {
		ratio = bidVolume.Div(askVolume)
	}
	return domain.OrderBookSummary{
		BidVolume: bidVolume,
		AskVolume: askVolume,
		Ratio:     ratio,
		Bias:      domain.BookBiasFromRatio(ratio),
	}
}
