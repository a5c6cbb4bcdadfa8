package trader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/internal/domain"
)

func longPlan() domain.TacticalPlan {
	return domain.TacticalPlan{
		Timestamp:   time.Now(),
		Symbol:      "BTCUSDT",
		Action:      domain.ActionLong,
		ShouldTrade: true,
		EntryPrice:  100,
		StopLoss:    99,
		TakeProfit:  103,
	}
}

func TestLevelsOf(t *testing.T) {
	levels, err := levelsOf(longPlan())
	require.NoError(t, err)
	assert.Equal(t, "100", levels.entry.String())
	assert.Equal(t, "99", levels.stop.String())
	assert.Equal(t, "103", levels.target.String())

	wait := longPlan()
	wait.Action = domain.ActionWait
	_, err = levelsOf(wait)
	assert.Error(t, err)

	broken := longPlan()
	broken.EntryPrice = 0
	_, err = levelsOf(broken)
	assert.Error(t, err)
}

func TestSizeFor(t *testing.T) {
	levels, err := levelsOf(longPlan())
	require.NoError(t, err)

	// risking 50 across a 1.0 stop distance buys 50 units
	qty, err := sizeFor(domain.NewRiskBudget(decimal.NewFromInt(50)), levels)
	require.NoError(t, err)
	assert.Equal(t, "50", qty.String())

	_, err = sizeFor(domain.NewRiskBudget(decimal.Zero), levels)
	assert.Error(t, err)
}

func TestSimulateTraderExecute(t *testing.T) {
	sim := NewSimulateTrader(domain.NewRiskBudget(decimal.NewFromInt(50)), 5, zap.NewNop())

	receipt, err := sim.Execute(context.Background(), longPlan())
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.True(t, receipt.Simulated)
	assert.Equal(t, "BTCUSDT", receipt.Symbol)
	assert.Equal(t, domain.ActionLong, receipt.Action)
	assert.NotEmpty(t, receipt.OrderID)
	assert.Equal(t, "50", receipt.Quantity.String())

	pos, ok := sim.Position("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.ActionLong, pos.Action)
	assert.Equal(t, "100", pos.Entry.String())

	// margin = 50 * 100 / 5 = 1000
	assert.Equal(t, "9000", sim.QuoteBalance().String())
}

func TestSimulateTraderReplacesPosition(t *testing.T) {
	sim := NewSimulateTrader(domain.NewRiskBudget(decimal.NewFromInt(50)), 5, zap.NewNop())

	_, err := sim.Execute(context.Background(), longPlan())
	require.NoError(t, err)

	short := longPlan()
	short.Action = domain.ActionShort
	short.StopLoss = 101
	short.TakeProfit = 97
	_, err = sim.Execute(context.Background(), short)
	require.NoError(t, err)

	pos, ok := sim.Position("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.ActionShort, pos.Action)

	// old margin released before the new one is taken
	assert.Equal(t, "9000", sim.QuoteBalance().String())
}

func TestSimulateTraderRejectsWhenBroke(t *testing.T) {
	sim := NewSimulateTrader(domain.NewRiskBudget(decimal.NewFromInt(10000)), 1, zap.NewNop())

	// qty = 10000/1 = 10000, margin = 10000*100 = 1000000 >> wallet
	_, err := sim.Execute(context.Background(), longPlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient simulated balance")
}

func TestSimulateTraderRejectsWaitPlan(t *testing.T) {
	sim := NewSimulateTrader(domain.NewRiskBudget(decimal.NewFromInt(50)), 5, zap.NewNop())

	wait := longPlan()
	wait.Action = domain.ActionWait
	_, err := sim.Execute(context.Background(), wait)
	assert.Error(t, err)
}
