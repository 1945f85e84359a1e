package commission

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

var (
	// ErrInvalidDeal marks negative or out-of-range deal inputs.
	ErrInvalidDeal = errors.New("invalid deal inputs")
	// ErrNonPositivePayout is returned when deductions consume the whole agent share.
	ErrNonPositivePayout = errors.New("computed payout amount is not positive")
	// ErrUnknownPolicy is returned for a policy the calculator does not implement.
	ErrUnknownPolicy = errors.New("unknown calculation policy")
)

// Deal holds the calculator inputs taken from a transaction.
type Deal struct {
	SalePrice           decimal.Decimal `json:"sale_price"`
	GrossCommissionRate decimal.Decimal `json:"gross_commission_rate"`
	ReferralFeePct      decimal.Decimal `json:"referral_fee_pct"`
}

// Breakdown is the commission math for one deal, rounded to cents.
type Breakdown struct {
	GCI                 decimal.Decimal         `json:"gci"`
	ReferralFee         decimal.Decimal         `json:"referral_fee"`
	FranchiseFee        decimal.Decimal         `json:"franchise_fee"`
	AdjustedGCI         decimal.Decimal         `json:"adjusted_gci"`
	AgentShare          decimal.Decimal         `json:"agent_share"`
	BrokerageShare      decimal.Decimal         `json:"brokerage_share"`
	BrokerageShareToCap decimal.Decimal         `json:"brokerage_share_to_cap"`
	RemainingCap        decimal.Decimal         `json:"remaining_cap"`
	EOFee               decimal.Decimal         `json:"eo_fee"`
	TransactionFee      decimal.Decimal         `json:"transaction_fee"`
	AgentNet            decimal.Decimal         `json:"agent_net"`
	Policy              enums.CalculationPolicy `json:"policy"`
}

// DeductionsTotal is the fixed fees taken from the agent share.
func (b Breakdown) DeductionsTotal() decimal.Decimal {
	return b.EOFee.Add(b.TransactionFee)
}

// Calculator applies one policy to every deal.
type Calculator struct {
	Policy enums.CalculationPolicy
}

// NewCalculator returns a calculator for policy.
func NewCalculator(policy enums.CalculationPolicy) (Calculator, error) {
	if !policy.IsValid() {
		return Calculator{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	return Calculator{Policy: policy}, nil
}

// Calculate runs the calculator's policy.
func (c Calculator) Calculate(deal Deal, plan Plan) (Breakdown, error) {
	return Calculate(c.Policy, deal, plan)
}

// Calculate derives the commission breakdown for deal under plan.
//
// Cap-aware: the brokerage keeps its split only up to what remains under the annual
// cap, and the agent takes the rest of adjusted GCI. Simple-split: the agent takes
// the primary split of adjusted GCI and the cap is reported but not applied.
func Calculate(policy enums.CalculationPolicy, deal Deal, plan Plan) (Breakdown, error) {
	if !policy.IsValid() {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	if err := deal.validate(); err != nil {
		return Breakdown{}, err
	}
	if err := plan.Validate(); err != nil {
		return Breakdown{}, err
	}

	gci := percentOf(deal.SalePrice, deal.GrossCommissionRate)
	referralFee := percentOf(gci, deal.ReferralFeePct)
	franchiseFee := percentOf(gci, plan.Deductions.FranchiseFeePct)
	adjusted := gci.Sub(referralFee).Sub(franchiseFee)

	remainingCap := decimal.Max(plan.CommissionCap.Sub(plan.CurrentTowardsCap), decimal.Zero)
	brokerageAtSplit := percentOf(adjusted, plan.PrimarySplit.Brokerage)
	brokerageToCap := decimal.Min(remainingCap, brokerageAtSplit)

	var agentShare, brokerageShare decimal.Decimal
	switch policy {
	case enums.CalculationPolicyCapAware:
		agentShare = adjusted.Sub(brokerageToCap)
		brokerageShare = brokerageToCap
	case enums.CalculationPolicySimpleSplit:
		agentShare = percentOf(adjusted, plan.PrimarySplit.Agent)
		brokerageShare = adjusted.Sub(agentShare)
	}

	agentNet := agentShare.Sub(plan.Deductions.EOFee).Sub(plan.Deductions.TransactionFee)

	out := Breakdown{
		GCI:                 cents(gci),
		ReferralFee:         cents(referralFee),
		FranchiseFee:        cents(franchiseFee),
		AdjustedGCI:         cents(adjusted),
		AgentShare:          cents(agentShare),
		BrokerageShare:      cents(brokerageShare),
		BrokerageShareToCap: cents(brokerageToCap),
		RemainingCap:        cents(remainingCap),
		EOFee:               cents(plan.Deductions.EOFee),
		TransactionFee:      cents(plan.Deductions.TransactionFee),
		AgentNet:            cents(agentNet),
		Policy:              policy,
	}
	if !out.AgentNet.IsPositive() {
		return out, fmt.Errorf("%w: agent net %s", ErrNonPositivePayout, out.AgentNet.StringFixed(2))
	}
	return out, nil
}

func (d Deal) validate() error {
	switch {
	case d.SalePrice.IsNegative():
		return fmt.Errorf("%w: sale price must not be negative", ErrInvalidDeal)
	case d.GrossCommissionRate.IsNegative() || d.GrossCommissionRate.GreaterThan(hundred):
		return fmt.Errorf("%w: gross commission rate must be between 0 and 100", ErrInvalidDeal)
	case d.ReferralFeePct.IsNegative() || d.ReferralFeePct.GreaterThan(hundred):
		return fmt.Errorf("%w: referral fee pct must be between 0 and 100", ErrInvalidDeal)
	}
	return nil
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

func cents(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
