package commission

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidPlan marks a plan whose split or amounts cannot be used.
var ErrInvalidPlan = errors.New("invalid commission plan")

var hundred = decimal.NewFromInt(100)

// Split holds complementary agent and brokerage percentages.
type Split struct {
	Agent     decimal.Decimal `json:"agent"`
	Brokerage decimal.Decimal `json:"brokerage"`
}

// Deductions are charged against the agent's share or the GCI.
type Deductions struct {
	FranchiseFeePct decimal.Decimal `json:"franchise_fee_pct"`
	EOFee           decimal.Decimal `json:"eo_fee"`
	TransactionFee  decimal.Decimal `json:"transaction_fee"`
}

// Plan is an agent's commission configuration.
type Plan struct {
	PrimarySplit      Split           `json:"primary_split"`
	CommissionCap     decimal.Decimal `json:"commission_cap"`
	CurrentTowardsCap decimal.Decimal `json:"current_towards_cap"`
	Deductions        Deductions      `json:"deductions"`
}

// DefaultPlan is returned for agents without a configured plan.
func DefaultPlan() Plan {
	return Plan{
		PrimarySplit: Split{
			Agent:     decimal.NewFromInt(70),
			Brokerage: decimal.NewFromInt(30),
		},
		CommissionCap:     decimal.NewFromInt(20000),
		CurrentTowardsCap: decimal.Zero,
		Deductions: Deductions{
			FranchiseFeePct: decimal.NewFromInt(6),
			EOFee:           decimal.NewFromInt(150),
			TransactionFee:  decimal.NewFromInt(450),
		},
	}
}

// Validate checks the split sums to 100 and no amount is negative.
func (p Plan) Validate() error {
	if !p.PrimarySplit.Agent.Add(p.PrimarySplit.Brokerage).Equal(hundred) {
		return fmt.Errorf("%w: agent %s%% + brokerage %s%% must equal 100",
			ErrInvalidPlan, p.PrimarySplit.Agent, p.PrimarySplit.Brokerage)
	}
	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"agent split", p.PrimarySplit.Agent},
		{"brokerage split", p.PrimarySplit.Brokerage},
		{"commission cap", p.CommissionCap},
		{"current towards cap", p.CurrentTowardsCap},
		{"franchise fee pct", p.Deductions.FranchiseFeePct},
		{"e&o fee", p.Deductions.EOFee},
		{"transaction fee", p.Deductions.TransactionFee},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPlan, c.name)
		}
	}
	if p.Deductions.FranchiseFeePct.GreaterThan(hundred) {
		return fmt.Errorf("%w: franchise fee pct must not exceed 100", ErrInvalidPlan)
	}
	return nil
}

// WithAgentSplit returns a copy whose split gives the agent pct and the brokerage the rest.
func (p Plan) WithAgentSplit(pct decimal.Decimal) (Plan, error) {
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return Plan{}, fmt.Errorf("%w: agent split %s%% must be in (0, 100]", ErrInvalidPlan, pct)
	}
	out := p
	out.PrimarySplit = Split{Agent: pct, Brokerage: hundred.Sub(pct)}
	return out, nil
}
