// Package trader places the orders a tactical plan calls for. Every
// implementation sizes positions from the same fixed per-trade risk
// budget and brackets the entry with the plan's stop and target.
package trader

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// quantityPrecision is the decimal precision orders are floored to.
const quantityPrecision = 4

// planLevels extracts and validates the price levels of an executable plan.
type planLevels struct {
	entry  decimal.Decimal
	stop   decimal.Decimal
	target decimal.Decimal
}

func levelsOf(plan domain.TacticalPlan) (planLevels, error) {
	if !plan.Action.Directional() {
		return planLevels{}, errors.Errorf("plan for %s has no direction", plan.Symbol)
	}
	levels := planLevels{
		entry:  decimal.NewFromFloat(plan.EntryPrice),
		stop:   decimal.NewFromFloat(plan.StopLoss),
		target: decimal.NewFromFloat(plan.TakeProfit),
	}
	if levels.entry.LessThanOrEqual(decimal.Zero) {
		return planLevels{}, errors.Errorf("plan for %s has non-positive entry", plan.Symbol)
	}
	return levels, nil
}

// sizeFor converts the risk budget into a base-asset quantity for the
// plan's entry-to-stop distance.
func sizeFor(budget domain.RiskBudget, levels planLevels) (decimal.Decimal, error) {
	qty := budget.PositionSize(levels.entry, levels.stop).RoundFloor(quantityPrecision)
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("position size rounds to zero, increase risk_per_trade")
	}
	return qty, nil
}
