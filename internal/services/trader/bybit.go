package trader

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// BybitTrader executes plans on Bybit USDT perpetuals. Stop and target
// ride on the entry order, the V5 API attaches them directly.
type BybitTrader struct {
	client    *bybit.Client
	budget    domain.RiskBudget
	leverage  int
	leveraged map[string]bool
}

// NewBybitTrader creates an executor with the given risk budget.
func NewBybitTrader(client *bybit.Client, budget domain.RiskBudget, leverage int) *BybitTrader {
	return &BybitTrader{
		client:    client,
		budget:    budget,
		leverage:  leverage,
		leveraged: make(map[string]bool),
	}
}

// Execute places a market order with attached stop-loss and take-profit.
func (t *BybitTrader) Execute(ctx context.Context, plan domain.TacticalPlan) (*domain.ExecutionReceipt, error) {
	levels, err := levelsOf(plan)
	if err != nil {
		return nil, err
	}
	qty, err := sizeFor(t.budget, levels)
	if err != nil {
		return nil, err
	}

	if err := t.ensureLeverage(plan.Symbol); err != nil {
		return nil, err
	}

	side := bybit.SideBuy
	if plan.Action == domain.ActionShort {
		side = bybit.SideSell
	}

	stop := levels.stop.String()
	target := levels.target.String()

	res, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:   bybit.CategoryV5Linear,
		Symbol:     bybit.SymbolV5(plan.Symbol),
		Side:       side,
		OrderType:  bybit.OrderTypeMarket,
		Qty:        qty.String(),
		StopLoss:   &stop,
		TakeProfit: &target,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", plan.Symbol)
	}

	return &domain.ExecutionReceipt{
		OrderID:  res.Result.OrderID,
		Symbol:   plan.Symbol,
		Action:   plan.Action,
		Quantity: qty,
		PlacedAt: time.Now(),
	}, nil
}

func (t *BybitTrader) ensureLeverage(symbol string) error {
	if t.leveraged[symbol] {
		return nil
	}

	leverage := strconv.Itoa(t.leverage)
	_, err := t.client.V5().Position().SetLeverage(bybit.V5SetLeverageParam{
		Category:     bybit.CategoryV5Linear,
		Symbol:       bybit.SymbolV5(symbol),
		BuyLeverage:  leverage,
		SellLeverage: leverage,
	})
	// 110043: leverage already matches, not a failure
	if err != nil && !strings.Contains(err.Error(), "110043") {
		return errors.Wrapf(err, "failed to set %sx leverage for %s", leverage, symbol)
	}
	t.leveraged[symbol] = true
	return nil
}
