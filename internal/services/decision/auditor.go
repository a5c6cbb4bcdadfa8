package decision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/services/promptbuilder"
	"github.com/caisyy0514/sentinel/pkg/breaker"
)

const (
	rsiExtremeHigh = 80.0
	rsiExtremeLow  = 20.0

	rejectionPenalty = 10
)

// AuditSource reviews a proposal against its snapshot. Implementations
// never fail: a broken backing model degrades to the rule verdict.
type AuditSource interface {
	Audit(ctx context.Context, proposal domain.StrategyProposal, snapshot *domain.MarketSnapshot) domain.AuditReport
}

// waitShortCircuit is the fixed report for non-actionable proposals.
func waitShortCircuit() domain.AuditReport {
	return domain.AuditReport{
		Approved:       false,
		RiskFlags:      []string{},
		LiquidityCheck: domain.LiquidityNotApplicable,
		Comment:        "no actionable proposal",
	}
}

// RuleAuditor is the deterministic reference review: reject extreme RSI,
// approve everything else with confidence passed through.
type RuleAuditor struct{}

// NewRuleAuditor returns the rule-based audit source.
func NewRuleAuditor() *RuleAuditor {
	return &RuleAuditor{}
}

// Audit applies the RSI-band policy.
func (a *RuleAuditor) Audit(_ context.Context, proposal domain.StrategyProposal, snapshot *domain.MarketSnapshot) domain.AuditReport {
	if proposal.Action == domain.ActionWait {
		return waitShortCircuit()
	}

	rsi := snapshot.RSIFloat()
	if rsi > rsiExtremeHigh || rsi < rsiExtremeLow {
		revised := proposal.Confidence - rejectionPenalty
		if revised < 0 {
			revised = 0
		}
		return domain.AuditReport{
			Approved:          false,
			RiskFlags:         []string{domain.RiskFlagExtremeRSI},
			LiquidityCheck:    domain.LiquidityPassed,
			RevisedConfidence: revised,
			Comment:           fmt.Sprintf("RSI %.1f is outside the tradable band", rsi),
		}
	}

	return domain.AuditReport{
		Approved:          true,
		RiskFlags:         []string{},
		LiquidityCheck:    domain.LiquidityPassed,
		RevisedConfidence: proposal.Confidence,
		Comment:           "no disqualifying risks found",
	}
}

// ModelAuditor asks a backing model to attack the proposal. Absence or
// failure of the model degrades to the rule verdict with the liquidity
// check marked skipped and the cause noted in the comment.
type ModelAuditor struct {
	caller  ModelCaller
	rules   *RuleAuditor
	breaker *breaker.Breaker
	logger  *zap.Logger
}

// NewModelAuditor returns a model-backed audit source. A nil caller is
// valid and yields rule verdicts.
func NewModelAuditor(caller ModelCaller, logger *zap.Logger) *ModelAuditor {
	return &ModelAuditor{
		caller:  caller,
		rules:   NewRuleAuditor(),
		breaker: breaker.New("auditor"),
		logger:  logger,
	}
}

// Audit consults the backing model.
func (a *ModelAuditor) Audit(ctx context.Context, proposal domain.StrategyProposal, snapshot *domain.MarketSnapshot) domain.AuditReport {
	if proposal.Action == domain.ActionWait {
		return waitShortCircuit()
	}

	if a.caller == nil {
		return a.degrade(ctx, proposal, snapshot, "auditor model not configured")
	}

	userPrompt := promptbuilder.BuildAuditPrompt(proposal, snapshot)
	raw, err := a.breaker.Do(func() (string, error) {
		return a.caller.Complete(ctx, promptbuilder.AuditorSystemPrompt, userPrompt)
	})
	if err != nil {
		a.logger.Warn("auditor call failed, degrading to rule verdict",
			zap.String("symbol", proposal.Symbol),
			zap.String("model", a.caller.Name()),
			zap.Error(err))
		return a.degrade(ctx, proposal, snapshot, fmt.Sprintf("auditor unavailable: %v", err))
	}

	report, err := domain.AuditFromJSON(raw)
	if err != nil {
		a.logger.Warn("auditor returned unusable payload",
			zap.String("symbol", proposal.Symbol),
			zap.String("model", a.caller.Name()),
			zap.Error(err))
		return a.degrade(ctx, proposal, snapshot, fmt.Sprintf("auditor response rejected: %v", err))
	}

	return report
}

func (a *ModelAuditor) degrade(ctx context.Context, proposal domain.StrategyProposal, snapshot *domain.MarketSnapshot, cause string) domain.AuditReport {
	report := a.rules.Audit(ctx, proposal, snapshot)
	report.LiquidityCheck = domain.LiquiditySkipped
	report.Comment = cause + "; " + report.Comment
	return report
}
