package trader

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// BinanceTrader executes plans on Binance USDT-margined futures. The
// entry is a market order bracketed by close-position stop and target
// orders.
type BinanceTrader struct {
	client    *futures.Client
	budget    domain.RiskBudget
	leverage  int
	leveraged map[string]bool
}

// NewBinanceTrader creates an executor with the given risk budget.
func NewBinanceTrader(client *futures.Client, budget domain.RiskBudget, leverage int) *BinanceTrader {
	return &BinanceTrader{
		client:    client,
		budget:    budget,
		leverage:  leverage,
		leveraged: make(map[string]bool),
	}
}

// Execute places the entry and bracket orders for plan.
func (t *BinanceTrader) Execute(ctx context.Context, plan domain.TacticalPlan) (*domain.ExecutionReceipt, error) {
	levels, err := levelsOf(plan)
	if err != nil {
		return nil, err
	}
	qty, err := sizeFor(t.budget, levels)
	if err != nil {
		return nil, err
	}

	if err := t.ensureLeverage(ctx, plan.Symbol); err != nil {
		return nil, err
	}

	side := futures.SideTypeBuy
	closeSide := futures.SideTypeSell
	if plan.Action == domain.ActionShort {
		side = futures.SideTypeSell
		closeSide = futures.SideTypeBuy
	}

	order, err := t.client.NewCreateOrderService().
		Symbol(plan.Symbol).
		Side(side).
		Type(futures.OrderTypeMarket).
		Quantity(qty.String()).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place entry order for %s", plan.Symbol)
	}

	_, err = t.client.NewCreateOrderService().
		Symbol(plan.Symbol).
		Side(closeSide).
		Type(futures.OrderTypeStopMarket).
		StopPrice(levels.stop.String()).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "entry placed but failed to place stop-loss for %s", plan.Symbol)
	}

	_, err = t.client.NewCreateOrderService().
		Symbol(plan.Symbol).
		Side(closeSide).
		Type(futures.OrderTypeTakeProfitMarket).
		StopPrice(levels.target.String()).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "entry placed but failed to place take-profit for %s", plan.Symbol)
	}

	return &domain.ExecutionReceipt{
		OrderID:  strconv.FormatInt(order.OrderID, 10),
		Symbol:   plan.Symbol,
		Action:   plan.Action,
		Quantity: qty,
		PlacedAt: time.Now(),
	}, nil
}

func (t *BinanceTrader) ensureLeverage(ctx context.Context, symbol string) error {
	if t.leveraged[symbol] {
		return nil
	}
	_, err := t.client.NewChangeLeverageService().
		Symbol(symbol).
		Leverage(t.leverage).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to set %dx leverage for %s", t.leverage, symbol)
	}
	t.leveraged[symbol] = true
	return nil
}
