package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalFromJSON(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantAction Action
	}{
		{
			name:       "valid long proposal",
			raw:        `{"action":"LONG","entry_price":100,"stop_loss":99,"take_profit":103,"reasoning":"breakout","confidence":75}`,
			wantAction: ActionLong,
		},
		{
			name:       "valid short proposal",
			raw:        `{"action":"SHORT","entry_price":100,"stop_loss":101,"take_profit":97,"reasoning":"rejection","confidence":60}`,
			wantAction: ActionShort,
		},
		{
			name:       "fenced payload",
			raw:        "```json\n{\"action\":\"WAIT\",\"reasoning\":\"chop\",\"confidence\":0}\n```",
			wantAction: ActionWait,
		},
		{
			name:    "unknown action",
			raw:     `{"action":"HOLD","reasoning":"x","confidence":10}`,
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			raw:     `{"action":"WAIT","reasoning":"x","confidence":140}`,
			wantErr: true,
		},
		{
			name:    "long with inverted levels",
			raw:     `{"action":"LONG","entry_price":100,"stop_loss":101,"take_profit":103,"reasoning":"x","confidence":50}`,
			wantErr: true,
		},
		{
			name:    "short with inverted levels",
			raw:     `{"action":"SHORT","entry_price":100,"stop_loss":99,"take_profit":103,"reasoning":"x","confidence":50}`,
			wantErr: true,
		},
		{
			name:    "directional without levels",
			raw:     `{"action":"LONG","reasoning":"x","confidence":50}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "the market looks bullish",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ProposalFromJSON("BTC_USDT", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, p.Action)
			assert.Equal(t, "BTC_USDT", p.Symbol)
		})
	}
}

func TestWaitProposalInvariant(t *testing.T) {
	p := WaitProposal("ETH_USDT", "no signal")

	require.NoError(t, p.Validate())
	assert.Equal(t, ActionWait, p.Action)
	assert.Zero(t, p.EntryPrice)
	assert.Zero(t, p.StopLoss)
	assert.Zero(t, p.TakeProfit)
	assert.Zero(t, p.Confidence)
	assert.Equal(t, "no signal", p.Reasoning)
}

func TestAuditFromJSON(t *testing.T) {
	raw := `{"approved":true,"risk_flags":[],"liquidity_check":"passed","revised_confidence":70,"comment":"structure intact"}`

	a, err := AuditFromJSON(raw)
	require.NoError(t, err)
	assert.True(t, a.Approved)
	assert.Equal(t, 70, a.RevisedConfidence)

	_, err = AuditFromJSON(`{"approved":true,"revised_confidence":120,"comment":"x"}`)
	require.Error(t, err)

	_, err = AuditFromJSON(`{"approved":false,"revised_confidence":10}`)
	require.Error(t, err, "missing comment must fail validation")
}
