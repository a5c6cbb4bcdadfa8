package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Liquidity verdict markers. Real liquidity analysis belongs to a backing
// model; the rule policy only records whether it ran.
const (
	LiquidityPassed        = "passed"
	LiquiditySkipped       = "skipped"
	LiquidityNotApplicable = "n/a"
)

// RiskFlagExtremeRSI is raised when RSI leaves the tradable band.
const RiskFlagExtremeRSI = "EXTREME_RSI_RISK"

// AuditReport second-stage risk review of a proposal.
type AuditReport struct {
	Approved          bool     `json:"approved"`
	RiskFlags         []string `json:"risk_flags"`
	LiquidityCheck    string   `json:"liquidity_check"`
	RevisedConfidence int      `json:"revised_confidence"`
	Comment           string   `json:"comment"`
}

// AuditFromJSON builds a validated audit report from a model response.
func AuditFromJSON(raw string) (AuditReport, error) {
	payload := sanitizeModelPayload(raw)
	if !json.Valid([]byte(payload)) {
		return AuditReport{}, errors.New("audit is not valid JSON")
	}

	var a AuditReport
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return AuditReport{}, errors.Wrap(err, "unmarshal audit")
	}

	if err := a.Validate(); err != nil {
		return AuditReport{}, err
	}
	return a, nil
}

// Validate checks the report invariants.
func (a *AuditReport) Validate() error {
	if a.RevisedConfidence < 0 || a.RevisedConfidence > 100 {
		return errors.Errorf("revised confidence %d out of [0,100]", a.RevisedConfidence)
	}
	if a.Comment == "" {
		return errors.New("audit comment is required")
	}
	return nil
}
