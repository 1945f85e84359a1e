package payouts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
)

var (
	// ErrInvalidTransition is returned for any move outside allowedTransitions.
	ErrInvalidTransition = errors.New("invalid payout status transition")
	// ErrInvalidSchedule is returned for a scheduled date before today (UTC).
	ErrInvalidSchedule = errors.New("invalid payout schedule")
	// ErrInvalidPaymentMethod is returned for methods outside ach, wire, check and manual.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrNonPositiveAmount blocks a payout without money from entering the payable queue.
	ErrNonPositiveAmount = errors.New("payout amount must be positive")
)

// allowedTransitions is the full general-path lifecycle. paid and cancelled are terminal.
var allowedTransitions = map[enums.PayoutStatus][]enums.PayoutStatus{
	enums.PayoutStatusReady:      {enums.PayoutStatusScheduled, enums.PayoutStatusCancelled},
	enums.PayoutStatusScheduled:  {enums.PayoutStatusProcessing, enums.PayoutStatusCancelled},
	enums.PayoutStatusProcessing: {enums.PayoutStatusPaid, enums.PayoutStatusFailed},
	enums.PayoutStatusFailed:     {enums.PayoutStatusScheduled, enums.PayoutStatusCancelled},
	enums.PayoutStatusPaid:       {},
	enums.PayoutStatusCancelled:  {},
}

// CanTransition reports whether from -> to is in the lifecycle table.
func CanTransition(from, to enums.PayoutStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses reachable from from.
func AllowedTargets(from enums.PayoutStatus) []enums.PayoutStatus {
	targets := allowedTransitions[from]
	out := make([]enums.PayoutStatus, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal reports whether status has no outbound transitions.
func IsTerminal(status enums.PayoutStatus) bool {
	targets, ok := allowedTransitions[status]
	return ok && len(targets) == 0
}

// TransitionExtra carries the optional fields stamped on the target status.
type TransitionExtra struct {
	PaidAt           *time.Time
	PaymentReference *string
	ACHProvider      *enums.ACHProvider
	FailureReason    *string
}

// TransitionError names the rejected move.
type TransitionError struct {
	From enums.PayoutStatus
	To   enums.PayoutStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Transition applies a general-path status change and returns the updated copy.
// The input payout is never modified.
func Transition(p *models.CommissionPayout, to enums.PayoutStatus, extra TransitionExtra, now time.Time) (*models.CommissionPayout, error) {
	if p == nil {
		return nil, fmt.Errorf("payout is required")
	}
	if !CanTransition(p.Status, to) {
		return nil, &TransitionError{From: p.Status, To: to}
	}
	now = now.UTC()
	out := p.Clone()

	switch to {
	case enums.PayoutStatusPaid:
		paidAt := now
		if extra.PaidAt != nil {
			paidAt = extra.PaidAt.UTC()
		}
		out.PaidAt = &paidAt
		if extra.PaymentReference != nil {
			out.PaymentReference = stringPtr(*extra.PaymentReference)
		}
		if extra.ACHProvider != nil {
			provider := *extra.ACHProvider
			out.ACHProvider = &provider
		}
	case enums.PayoutStatusFailed:
		if extra.FailureReason != nil {
			out.FailureReason = stringPtr(*extra.FailureReason)
		}
		out.FailedAt = &now
	case enums.PayoutStatusProcessing:
		if extra.ACHProvider != nil {
			provider := *extra.ACHProvider
			out.ACHProvider = &provider
		}
		out.ProcessingAt = &now
	case enums.PayoutStatusCancelled:
		if extra.FailureReason != nil {
			out.FailureReason = stringPtr(*extra.FailureReason)
		}
		out.CancelledAt = &now
	case enums.PayoutStatusScheduled:
		out.ScheduledAt = &now
		out.FailureReason = nil
	}

	advance(out, to, now)
	return out, nil
}

// ScheduleRequest is the input of the initial scheduling path.
type ScheduleRequest struct {
	ScheduledDate   time.Time
	PaymentMethod   enums.PaymentMethod
	ProviderDetails json.RawMessage
}

// Schedule moves a ready payout into the payable queue. It is stricter than the
// general path: only ready payouts qualify and the date may not be in the past.
func Schedule(p *models.CommissionPayout, req ScheduleRequest, now time.Time) (*models.CommissionPayout, error) {
	if p == nil {
		return nil, fmt.Errorf("payout is required")
	}
	if p.Status != enums.PayoutStatusReady {
		return nil, &TransitionError{From: p.Status, To: enums.PayoutStatusScheduled}
	}
	now = now.UTC()
	if req.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", ErrInvalidSchedule)
	}
	if req.ScheduledDate.UTC().Before(startOfDay(now)) {
		return nil, fmt.Errorf("%w: scheduled date %s is in the past", ErrInvalidSchedule, req.ScheduledDate.UTC().Format("2006-01-02"))
	}
	if !req.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	if !p.PayoutAmount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	out := p.Clone()
	date := req.ScheduledDate.UTC()
	method := req.PaymentMethod
	out.ScheduledDate = &date
	out.PaymentMethod = &method
	if len(req.ProviderDetails) > 0 {
		out.ProviderDetails = append(json.RawMessage(nil), req.ProviderDetails...)
	}
	out.ScheduledAt = &now
	out.FailureReason = nil

	advance(out, enums.PayoutStatusScheduled, now)
	return out, nil
}

// StartProcessing is the ACH dispatch entry: scheduled or ready payouts move straight
// to processing, and force also admits a failed payout.
func StartProcessing(p *models.CommissionPayout, provider enums.ACHProvider, force bool, now time.Time) (*models.CommissionPayout, error) {
	if p == nil {
		return nil, fmt.Errorf("payout is required")
	}
	switch {
	case p.Status == enums.PayoutStatusScheduled, p.Status == enums.PayoutStatusReady:
	case p.Status == enums.PayoutStatusFailed && force:
	default:
		return nil, &TransitionError{From: p.Status, To: enums.PayoutStatusProcessing}
	}
	if !p.PayoutAmount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	now = now.UTC()
	out := p.Clone()
	method := enums.PaymentMethodACH
	out.PaymentMethod = &method
	out.ACHProvider = &provider
	out.ProcessingAt = &now
	out.FailureReason = nil

	advance(out, enums.PayoutStatusProcessing, now)
	return out, nil
}

func advance(p *models.CommissionPayout, to enums.PayoutStatus, now time.Time) {
	p.Status = to
	p.Version++
	p.UpdatedAt = now
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stringPtr(v string) *string {
	return &v
}
