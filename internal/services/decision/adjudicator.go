package decision

import (
	"fmt"
	"math"
	"time"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// Adjudicator is the deterministic expected-value gate. The loss branch of
// the EV formula is fixed at one risk-unit: EV = p_win * rr - (1 - p_win).
type Adjudicator struct {
	minEV       float64
	pwinFloor   float64
	pwinCeiling float64
}

// NewAdjudicator returns a gate admitting trades whose EV strictly exceeds
// minEV, with win probability clamped into [floor, ceiling].
func NewAdjudicator(minEV, pwinFloor, pwinCeiling float64) Adjudicator {
	return Adjudicator{minEV: minEV, pwinFloor: pwinFloor, pwinCeiling: pwinCeiling}
}

// Adjudicate combines a proposal and its audit into a tactical plan. No
// input combination produces an error: rejections are plans with
// should_trade false and the reason in the rationale.
func (a Adjudicator) Adjudicate(proposal domain.StrategyProposal, audit domain.AuditReport) domain.TacticalPlan {
	plan := domain.TacticalPlan{
		Timestamp:  time.Now(),
		Symbol:     proposal.Symbol,
		Action:     proposal.Action,
		EntryPrice: proposal.EntryPrice,
		StopLoss:   proposal.StopLoss,
		TakeProfit: proposal.TakeProfit,
		Proposal:   proposal,
		Audit:      audit,
	}

	if !audit.Approved || proposal.Action == domain.ActionWait {
		plan.Rationale = audit.Comment
		return plan
	}

	pwin := clamp(float64(audit.RevisedConfidence)/100, a.pwinFloor, a.pwinCeiling)
	reward := math.Abs(proposal.TakeProfit - proposal.EntryPrice)
	risk := math.Abs(proposal.EntryPrice - proposal.StopLoss)

	if risk == 0 {
		plan.Rationale = "rejected: zero stop distance makes risk-reward undefined"
		return plan
	}

	rr := reward / risk
	ev := pwin*rr - (1-pwin)*1.0

	plan.ExpectedValue = ev
	plan.ShouldTrade = ev > a.minEV

	verdict := "rejected: expected value below threshold"
	if plan.ShouldTrade {
		verdict = "execute"
	}
	plan.Rationale = fmt.Sprintf("%s | p_win %.2f, rr %.2f, EV %.2f (min %.2f)",
		verdict, pwin, rr, ev, a.minEV)

	return plan
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
