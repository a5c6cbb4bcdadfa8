package trader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/internal/domain"
)

var simulateStartingQuote = decimal.NewFromInt(10000)

// SimPosition is an open simulated position.
type SimPosition struct {
	Action   domain.Action
	Quantity decimal.Decimal
	Entry    decimal.Decimal
	Stop     decimal.Decimal
	Target   decimal.Decimal
	OpenedAt time.Time
}

// SimulateTrader is a paper executor. It books positions against a
// virtual quote balance and never talks to an exchange.
type SimulateTrader struct {
	mu        sync.Mutex
	budget    domain.RiskBudget
	leverage  int
	logger    *zap.Logger
	quote     decimal.Decimal
	positions map[string]SimPosition
}

// NewSimulateTrader creates a paper executor with a fresh virtual wallet.
func NewSimulateTrader(budget domain.RiskBudget, leverage int, logger *zap.Logger) *SimulateTrader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leverage < 1 {
		leverage = 1
	}
	t := &SimulateTrader{
		budget:    budget,
		leverage:  leverage,
		logger:    logger,
		quote:     simulateStartingQuote,
		positions: make(map[string]SimPosition),
	}
	t.logger.Info("simulate init",
		zap.String("quote", t.quote.String()),
		zap.Int("leverage", leverage))
	return t
}

// Execute books a simulated position for plan.
func (t *SimulateTrader) Execute(ctx context.Context, plan domain.TacticalPlan) (*domain.ExecutionReceipt, error) {
	levels, err := levelsOf(plan)
	if err != nil {
		return nil, err
	}
	qty, err := sizeFor(t.budget, levels)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	margin := qty.Mul(levels.entry).Div(decimal.NewFromInt(int64(t.leverage)))
	if t.quote.LessThan(margin) {
		return nil, errors.Errorf("insufficient simulated balance: have %s need %s (with %dx leverage)",
			t.quote.String(), margin.String(), t.leverage)
	}

	if prev, ok := t.positions[plan.Symbol]; ok {
		// one position per symbol, a new signal replaces the old one
		t.quote = t.quote.Add(prev.Quantity.Mul(prev.Entry).Div(decimal.NewFromInt(int64(t.leverage))))
		t.logger.Warn("replacing open simulated position",
			zap.String("symbol", plan.Symbol),
			zap.String("old_action", prev.Action.String()),
			zap.String("new_action", plan.Action.String()))
	}

	t.quote = t.quote.Sub(margin)
	t.positions[plan.Symbol] = SimPosition{
		Action:   plan.Action,
		Quantity: qty,
		Entry:    levels.entry,
		Stop:     levels.stop,
		Target:   levels.target,
		OpenedAt: time.Now(),
	}

	orderID := uuid.New().String()
	t.logger.Info("simulated order executed",
		zap.String("id", orderID),
		zap.String("symbol", plan.Symbol),
		zap.String("action", plan.Action.String()),
		zap.String("qty", qty.String()),
		zap.String("entry", levels.entry.String()),
		zap.String("quote_left", t.quote.String()))

	return &domain.ExecutionReceipt{
		OrderID:   orderID,
		Symbol:    plan.Symbol,
		Action:    plan.Action,
		Quantity:  qty,
		Simulated: true,
		PlacedAt:  time.Now(),
	}, nil
}

// Position returns the open simulated position for symbol, if any.
func (t *SimulateTrader) Position(symbol string) (SimPosition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos, ok := t.positions[symbol]
	return pos, ok
}

// QuoteBalance returns the remaining virtual quote balance.
func (t *SimulateTrader) QuoteBalance() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quote
}
