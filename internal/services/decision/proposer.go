// Package decision implements the two-stage adversarial pipeline: a
// proposing source, an auditing source and the expected-value adjudicator
// that turns their output into a tactical plan.
package decision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/services/promptbuilder"
	"github.com/caisyy0514/sentinel/pkg/breaker"
)

// Reference stop and target distances for rule-based proposals.
const (
	longStopMult    = 0.99
	longTargetMult  = 1.03
	shortStopMult   = 1.01
	shortTargetMult = 0.97

	ruleConfidence = 75
	rsiOverbought  = 70.0
	rsiOversold    = 30.0
)

// ProposalSource produces a proposal for a snapshot. Implementations never
// fail: errors degrade internally to a WAIT proposal carrying the reason.
type ProposalSource interface {
	Propose(ctx context.Context, snapshot *domain.MarketSnapshot) domain.StrategyProposal
}

// ModelCaller is the slice of the model client the sources need.
type ModelCaller interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// RuleProposer is the deterministic reference policy: trend plus RSI gate,
// fixed stop and target distances.
type RuleProposer struct{}

// NewRuleProposer returns the rule-based proposal source.
func NewRuleProposer() *RuleProposer {
	return &RuleProposer{}
}

// Propose applies the trend/RSI policy to the snapshot.
func (p *RuleProposer) Propose(_ context.Context, snapshot *domain.MarketSnapshot) domain.StrategyProposal {
	symbol := snapshot.Pair.String()
	trend := snapshot.Technicals.EMATrend
	rsi := snapshot.RSIFloat()
	price := snapshot.PriceFloat()

	switch {
	case trend == domain.TrendDirectionBullish && rsi < rsiOverbought:
		return domain.StrategyProposal{
			Symbol:     symbol,
			Action:     domain.ActionLong,
			EntryPrice: price,
			StopLoss:   price * longStopMult,
			TakeProfit: price * longTargetMult,
			Reasoning:  fmt.Sprintf("bullish EMA structure with RSI %.1f below overbought", rsi),
			Confidence: ruleConfidence,
		}
	case trend == domain.TrendDirectionBearish && rsi > rsiOversold:
		return domain.StrategyProposal{
			Symbol:     symbol,
			Action:     domain.ActionShort,
			EntryPrice: price,
			StopLoss:   price * shortStopMult,
			TakeProfit: price * shortTargetMult,
			Reasoning:  fmt.Sprintf("bearish EMA structure with RSI %.1f above oversold", rsi),
			Confidence: ruleConfidence,
		}
	default:
		return domain.WaitProposal(symbol,
			fmt.Sprintf("no directional edge: trend %s, RSI %.1f", trend, rsi))
	}
}

// ModelProposer asks a backing model for a proposal. Any failure along the
// way (breaker open, transport, unusable payload) converts to a WAIT
// proposal annotated with the cause; nothing propagates to the caller.
type ModelProposer struct {
	caller  ModelCaller
	breaker *breaker.Breaker
	logger  *zap.Logger
}

// NewModelProposer returns a model-backed proposal source. A nil caller is
// valid and yields not-configured WAIT proposals.
func NewModelProposer(caller ModelCaller, logger *zap.Logger) *ModelProposer {
	return &ModelProposer{
		caller:  caller,
		breaker: breaker.New("strategist"),
		logger:  logger,
	}
}

// Propose consults the backing model.
func (p *ModelProposer) Propose(ctx context.Context, snapshot *domain.MarketSnapshot) domain.StrategyProposal {
	symbol := snapshot.Pair.String()
	if p.caller == nil {
		return domain.WaitProposal(symbol, "strategist model not configured")
	}

	userPrompt := promptbuilder.BuildProposalPrompt(snapshot)
	raw, err := p.breaker.Do(func() (string, error) {
		return p.caller.Complete(ctx, promptbuilder.StrategistSystemPrompt, userPrompt)
	})
	if err != nil {
		p.logger.Warn("strategist call failed, degrading to WAIT",
			zap.String("symbol", symbol),
			zap.String("model", p.caller.Name()),
			zap.Error(err))
		return domain.WaitProposal(symbol, fmt.Sprintf("strategist unavailable: %v", err))
	}

	proposal, err := domain.ProposalFromJSON(symbol, raw)
	if err != nil {
		p.logger.Warn("strategist returned unusable payload",
			zap.String("symbol", symbol),
			zap.String("model", p.caller.Name()),
			zap.Error(err))
		return domain.WaitProposal(symbol, fmt.Sprintf("strategist response rejected: %v", err))
	}

	return proposal
}
