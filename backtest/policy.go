// Package backtest replays historical closing prices under fixed
// covered-call selection policies and aggregates per-policy outcomes.
package backtest

import (
	"fmt"

	"covcall/models"
)

// Policy is one fixed selection rule: sell a call OTMPercent above the
// window's opening price, expiring Days trading days later.
type Policy struct {
	Label      string  `yaml:"label" json:"label"`
	OTMPercent float64 `yaml:"otm_percent" json:"otm_percent"`
	Days       int     `yaml:"days" json:"days"`
}

func (p Policy) validate() error {
	if p.Days <= 0 {
		return fmt.Errorf("%w: policy %q days %d must be positive", models.ErrInvalidInput, p.Label, p.Days)
	}
	if p.OTMPercent < 0 {
		return fmt.Errorf("%w: policy %q otm %.4f must be non-negative", models.ErrInvalidInput, p.Label, p.OTMPercent)
	}
	return nil
}

// DefaultPolicies spans very conservative to very aggressive selling.
func DefaultPolicies() []Policy {
	return []Policy{
		{Label: "Very Conservative (10% OTM, 45 days)", OTMPercent: 0.10, Days: 45},
		{Label: "Conservative (5% OTM, 30 days)", OTMPercent: 0.05, Days: 30},
		{Label: "Moderate (3% OTM, 30 days)", OTMPercent: 0.03, Days: 30},
		{Label: "Aggressive (2% OTM, 21 days)", OTMPercent: 0.02, Days: 21},
		{Label: "Very Aggressive (ATM, 14 days)", OTMPercent: 0.00, Days: 14},
	}
}
