package domain

import "time"

// TacticalPlan final verdict for one symbol in one cycle. Immutable once
// constructed: history and journal hand out copies only.
type TacticalPlan struct {
	Timestamp     time.Time        `json:"ts"`
	Symbol        string           `json:"symbol"`
	Action        Action           `json:"action"`
	ShouldTrade   bool             `json:"should_trade"`
	EntryPrice    float64          `json:"entry_price"`
	StopLoss      float64          `json:"stop_loss"`
	TakeProfit    float64          `json:"take_profit"`
	ExpectedValue float64          `json:"expected_value"`
	Rationale     string           `json:"rationale"`
	Proposal      StrategyProposal `json:"proposal"`
	Audit         AuditReport      `json:"audit"`
}

// PlanRecord journal entry wrapping a plan with its append index.
type PlanRecord struct {
	Index uint64
	Plan  TacticalPlan
}
