package domain

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// StrategyProposal candidate trade produced by the first decision stage.
type StrategyProposal struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Reasoning  string  `json:"reasoning"`
	Confidence int     `json:"confidence"`
}

// WaitProposal builds the canonical no-trade proposal: zero levels, zero
// confidence, the reason preserved for the audit trail.
func WaitProposal(symbol, reason string) StrategyProposal {
	return StrategyProposal{
		Symbol:    symbol,
		Action:    ActionWait,
		Reasoning: reason,
	}
}

// ProposalFromJSON builds a validated proposal from a model response.
func ProposalFromJSON(symbol, raw string) (StrategyProposal, error) {
	payload := sanitizeModelPayload(raw)
	if !json.Valid([]byte(payload)) {
		return StrategyProposal{}, errors.New("proposal is not valid JSON")
	}

	var p StrategyProposal
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return StrategyProposal{}, errors.Wrap(err, "unmarshal proposal")
	}
	p.Symbol = symbol

	if err := p.Validate(); err != nil {
		return StrategyProposal{}, err
	}
	return p, nil
}

// sanitizeModelPayload strips markdown code fences models wrap around JSON.
func sanitizeModelPayload(raw string) string {
	payload := strings.TrimSpace(raw)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	return strings.TrimSpace(payload)
}

// Validate checks the proposal invariants.
func (p *StrategyProposal) Validate() error {
	if !p.Action.Valid() {
		return errors.Errorf("invalid action %q", string(p.Action))
	}
	if p.Confidence < 0 || p.Confidence > 100 {
		return errors.Errorf("confidence %d out of [0,100]", p.Confidence)
	}
	if p.Action == ActionWait {
		return nil
	}
	if p.EntryPrice <= 0 || p.StopLoss <= 0 || p.TakeProfit <= 0 {
		return errors.New("directional proposal requires positive entry, stop and target")
	}
	switch p.Action {
	case ActionLong:
		if !(p.StopLoss < p.EntryPrice && p.EntryPrice < p.TakeProfit) {
			return errors.New("long proposal requires stop < entry < target")
		}
	case ActionShort:
		if !(p.TakeProfit < p.EntryPrice && p.EntryPrice < p.StopLoss) {
			return errors.New("short proposal requires target < entry < stop")
		}
	}
	return nil
}
