package ach

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

const day = 24 * time.Hour

// simulated answers like a provider sandbox without leaving the process.
type simulated struct {
	name      enums.ACHProvider
	status    Status
	eta       time.Duration
	reference func(now time.Time, req Request) string
	fee       func(amount decimal.Decimal) *decimal.Decimal
	now       func() time.Time
}

func (s *simulated) Name() enums.ACHProvider {
	return s.name
}

func (s *simulated) Process(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	result := &Result{
		Provider:            s.name,
		Status:              s.status,
		ReferenceID:         s.reference(now, req),
		EstimatedCompletion: now.Add(s.eta),
	}
	if s.fee != nil {
		result.ProviderFee = s.fee(req.Amount)
	}
	return result, nil
}

func shortID(req Request) string {
	return req.PayoutID.String()[:8]
}

func flatFee(amount string) func(decimal.Decimal) *decimal.Decimal {
	fee := decimal.RequireFromString(amount)
	return func(decimal.Decimal) *decimal.Decimal {
		v := fee
		return &v
	}
}

// NewMockProvider settles immediately with no fee.
func NewMockProvider(now func() time.Time) Provider {
	return &simulated{
		name:   enums.ACHProviderMock,
		status: StatusCompleted,
		eta:    3 * day,
		now:    clockOrDefault(now),
		reference: func(now time.Time, req Request) string {
			return fmt.Sprintf("mock_ach_%d_%s", now.UnixMilli(), shortID(req))
		},
	}
}

// NewStripeProvider simulates a Stripe payout: two days, 0.8% fee.
func NewStripeProvider(now func() time.Time) Provider {
	rate := decimal.RequireFromString("0.008")
	return &simulated{
		name:   enums.ACHProviderStripe,
		status: StatusPending,
		eta:    2 * day,
		now:    clockOrDefault(now),
		reference: func(now time.Time, req Request) string {
			return fmt.Sprintf("po_%d%s", now.UnixMilli(), shortID(req))
		},
		fee: func(amount decimal.Decimal) *decimal.Decimal {
			v := amount.Mul(rate).Round(2)
			return &v
		},
	}
}

// NewPlaidProvider simulates a Plaid transfer: next day, $1.50 flat.
func NewPlaidProvider(now func() time.Time) Provider {
	return &simulated{
		name:   enums.ACHProviderPlaid,
		status: StatusPending,
		eta:    day,
		now:    clockOrDefault(now),
		reference: func(now time.Time, req Request) string {
			return fmt.Sprintf("plaid_transfer_%d_%s", now.UnixMilli(), shortID(req))
		},
		fee: flatFee("1.50"),
	}
}

// NewDwollaProvider simulates a Dwolla transfer: three days, $0.50 flat.
func NewDwollaProvider(now func() time.Time) Provider {
	return &simulated{
		name:   enums.ACHProviderDwolla,
		status: StatusPending,
		eta:    3 * day,
		now:    clockOrDefault(now),
		reference: func(now time.Time, req Request) string {
			return fmt.Sprintf("dwolla_%s_%d", req.PayoutID, now.UnixMilli())
		},
		fee: flatFee("0.50"),
	}
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
