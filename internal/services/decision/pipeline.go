package decision

import (
	"context"

	"github.com/pkg/errors"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// Pipeline runs propose, audit and adjudicate in sequence. The sources
// absorb their own failures, so the only error a caller can see is a
// structurally invalid snapshot.
type Pipeline struct {
	proposer    ProposalSource
	auditor     AuditSource
	adjudicator Adjudicator
}

// NewPipeline composes the three stages.
func NewPipeline(proposer ProposalSource, auditor AuditSource, adjudicator Adjudicator) *Pipeline {
	return &Pipeline{proposer: proposer, auditor: auditor, adjudicator: adjudicator}
}

// GeneratePlan produces the tactical plan for one snapshot.
func (p *Pipeline) GeneratePlan(ctx context.Context, snapshot *domain.MarketSnapshot) (domain.TacticalPlan, error) {
	if err := snapshot.Validate(); err != nil {
		return domain.TacticalPlan{}, errors.Wrap(err, "invalid snapshot")
	}

	proposal := p.proposer.Propose(ctx, snapshot)
	audit := p.auditor.Audit(ctx, proposal, snapshot)
	return p.adjudicator.Adjudicate(proposal, audit), nil
}
