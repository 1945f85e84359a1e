package ach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

var (
	// ErrUnsupportedProvider is returned for provider names outside the supported set.
	ErrUnsupportedProvider = errors.New("unsupported ach provider")
	// ErrBelowMinimum is returned by CheckMinimum for amounts under the ACH floor.
	ErrBelowMinimum = errors.New("amount below ach minimum")
	// ErrInvalidRequest marks a request without an amount or payout id.
	ErrInvalidRequest = errors.New("invalid ach request")
)

// DefaultMinimum is the smallest amount sent over ACH.
var DefaultMinimum = decimal.NewFromInt(1)

// Status is the provider-reported state of a transfer.
type Status string

const (
	// StatusCompleted means the funds settled synchronously.
	StatusCompleted Status = "completed"
	// StatusPending means the transfer was accepted and settles later.
	StatusPending Status = "pending"
)

// Request is one transfer to an agent's bank account.
type Request struct {
	Amount         decimal.Decimal
	PayoutID       uuid.UUID
	AccountDetails map[string]any
	Metadata       map[string]any
}

// Result is what a provider returns for an accepted transfer.
type Result struct {
	Provider            enums.ACHProvider `json:"provider"`
	Status              Status            `json:"status"`
	ReferenceID         string            `json:"reference_id"`
	EstimatedCompletion time.Time         `json:"estimated_completion"`
	ProviderFee         *decimal.Decimal  `json:"provider_fee,omitempty"`
}

// Provider sends a transfer over one rail.
type Provider interface {
	Name() enums.ACHProvider
	Process(ctx context.Context, req Request) (*Result, error)
}

// CheckMinimum fails with ErrBelowMinimum when amount < minimum.
func CheckMinimum(amount, minimum decimal.Decimal) error {
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: %s is below %s", ErrBelowMinimum, amount.StringFixed(2), minimum.StringFixed(2))
	}
	return nil
}

func (r Request) validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if r.PayoutID == uuid.Nil {
		return fmt.Errorf("%w: payout id is required", ErrInvalidRequest)
	}
	return nil
}
