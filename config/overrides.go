package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// Overrides is the optional JSON body of a start request. Only the
// fields present override the base config; secrets cannot be set here.
type Overrides struct {
	Platform     *string  `json:"platform,omitempty"`
	Pairs        []string `json:"pairs,omitempty"`
	Timeframe    *string  `json:"timeframe,omitempty"`
	PollInterval *string  `json:"poll_interval,omitempty"`
	Cooldown     *string  `json:"cooldown,omitempty"`
	MinEV        *float64 `json:"min_ev,omitempty"`
	RiskPerTrade *string  `json:"risk_per_trade,omitempty"`
	Leverage     *int     `json:"leverage,omitempty"`
	DryRun       *bool    `json:"dry_run,omitempty"`
	Testnet      *bool    `json:"testnet,omitempty"`
}

// WithOverrides returns a copy of c with the override fields applied.
func (c Config) WithOverrides(o Overrides) (Config, error) {
	out := c

	if o.Platform != nil {
		out.Platform = *o.Platform
	}
	if len(o.Pairs) > 0 {
		pairs := make([]domain.Pair, 0, len(o.Pairs))
		for _, p := range o.Pairs {
			pair, err := domain.ParsePair(p)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect pair %q in overrides: %w", p, err)
			}
			pairs = append(pairs, pair)
		}
		out.Pairs = pairs
	}
	if o.Timeframe != nil {
		out.Timeframe = *o.Timeframe
	}
	if o.PollInterval != nil {
		d, err := time.ParseDuration(*o.PollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect poll_interval in overrides: %w", err)
		}
		out.PollInterval = d
	}
	if o.Cooldown != nil {
		d, err := time.ParseDuration(*o.Cooldown)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect cooldown in overrides: %w", err)
		}
		out.Cooldown = d
	}
	if o.MinEV != nil {
		out.MinEV = *o.MinEV
	}
	if o.RiskPerTrade != nil {
		v, err := decimal.NewFromString(*o.RiskPerTrade)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect risk_per_trade in overrides: %w", err)
		}
		out.RiskPerTrade = v
	}
	if o.Leverage != nil {
		out.Leverage = *o.Leverage
	}
	if o.DryRun != nil {
		out.DryRun = *o.DryRun
	}
	if o.Testnet != nil {
		out.Testnet = *o.Testnet
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}
