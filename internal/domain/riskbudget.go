package domain

import "github.com/shopspring/decimal"

// RiskBudget position sizing from a fixed per-trade risk in quote currency.
type RiskBudget struct {
	perTradeQuote decimal.Decimal
}

// NewRiskBudget returns a budget risking perTradeQuote units per trade.
func NewRiskBudget(perTradeQuote decimal.Decimal) RiskBudget {
	return RiskBudget{perTradeQuote: perTradeQuote}
}

// PositionSize returns the base-asset amount such that the distance from
// entry to stop costs exactly the per-trade risk. Zero when the distance
// is zero or the budget is unset.
func (r RiskBudget) PositionSize(entry, stop decimal.Decimal) decimal.Decimal {
	if r.perTradeQuote.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	riskPerUnit := entry.Sub(stop).Abs()
	if riskPerUnit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return r.perTradeQuote.Div(riskPerUnit)
}
