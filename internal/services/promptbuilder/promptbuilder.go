// Package promptbuilder formats market snapshots and proposals into
// token-efficient prompts for the decision models.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// BuildProposalPrompt renders the strategist's user prompt for one snapshot.
func BuildProposalPrompt(snapshot *domain.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SYMBOL: %s\n", snapshot.Pair.String())
	fmt.Fprintf(&b, "PRICE: %s (bid %s / ask %s, spread %s%%)\n",
		snapshot.Price, snapshot.Bid, snapshot.Ask,
		snapshot.SpreadRatio.Mul(hundred).StringFixed(4))
	fmt.Fprintf(&b, "FUNDING RATE: %s\n", snapshot.FundingRate)
	fmt.Fprintf(&b, "24H VOLUME: %s\n", snapshot.Volume24h)
	fmt.Fprintf(&b, "ORDER BOOK: top-10 bid vol %s vs ask vol %s, ratio %s -> %s\n",
		snapshot.Book.BidVolume, snapshot.Book.AskVolume,
		snapshot.Book.Ratio.StringFixed(2), snapshot.Book.Bias)

	t := snapshot.Technicals
	fmt.Fprintf(&b, "TECHNICALS: RSI14 %s | ATR14 %s | EMA trend %s | last close %s | prev close %s\n",
		t.RSI.StringFixed(2), t.ATR.StringFixed(4), t.EMATrend.Title(), t.LastClose, t.PrevClose)

	b.WriteString("\nPropose one trade for this symbol, or WAIT.")
	return b.String()
}

// BuildAuditPrompt renders the auditor's user prompt for a proposal and the
// snapshot it originated from.
func BuildAuditPrompt(proposal domain.StrategyProposal, snapshot *domain.MarketSnapshot) string {
	var b strings.Builder

	b.WriteString("PROPOSAL UNDER REVIEW:\n")
	fmt.Fprintf(&b, "  symbol: %s\n", proposal.Symbol)
	fmt.Fprintf(&b, "  action: %s\n", proposal.Action)
	fmt.Fprintf(&b, "  entry: %.6f  stop: %.6f  target: %.6f\n",
		proposal.EntryPrice, proposal.StopLoss, proposal.TakeProfit)
	fmt.Fprintf(&b, "  confidence: %d\n", proposal.Confidence)
	fmt.Fprintf(&b, "  reasoning: %s\n", proposal.Reasoning)

	b.WriteString("\nMARKET SNAPSHOT:\n")
	b.WriteString(BuildProposalPrompt(snapshot))
	b.WriteString("\n\nAudit this proposal.")
	return b.String()
}
