package payouts

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/internal/ach"
	"github.com/closingdesk/commission-backend/internal/commission"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	"github.com/closingdesk/commission-backend/pkg/pagination"
	"github.com/closingdesk/commission-backend/pkg/visibility"
)

// Actor is the authenticated caller driving an operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role enums.UserRole
}

func (a Actor) viewer() visibility.Viewer {
	return visibility.Viewer{UserID: a.ID, Role: a.Role}
}

func (a Actor) idPtr() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// CreateInput requests a payout for an approved transaction.
type CreateInput struct {
	TransactionID uuid.UUID
	Actor         Actor
}

// CreateResult is the stored payout plus the math behind it.
type CreateResult struct {
	Payout    *models.CommissionPayout `json:"payout"`
	Breakdown commission.Breakdown     `json:"breakdown"`
	Plan      commission.Plan          `json:"plan"`
}

// ScheduleInput is the schedule-payout request.
type ScheduleInput struct {
	PayoutID        uuid.UUID
	ScheduledDate   time.Time
	PaymentMethod   enums.PaymentMethod
	ProviderDetails json.RawMessage
	Actor           Actor
}

// UpdateStatusInput is the general status-transition request.
type UpdateStatusInput struct {
	PayoutID         uuid.UUID
	NewStatus        enums.PayoutStatus
	PaidAt           *time.Time
	PaymentReference *string
	ACHProvider      *enums.ACHProvider
	FailureReason    *string
	Actor            Actor
}

// ProcessACHInput dispatches a payout through an ACH provider.
type ProcessACHInput struct {
	PayoutID       uuid.UUID
	ACHProvider    *enums.ACHProvider
	AccountDetails map[string]any
	ForceProcess   bool
	TestMode       bool
	Actor          Actor
}

// ACH dispatch outcomes reported to callers.
const (
	OutcomePaid       = "paid"
	OutcomeProcessing = "processing"
	OutcomeFailed     = "failed"
)

// ProcessACHResult reports where the payout ended up after dispatch.
type ProcessACHResult struct {
	Payout        *models.CommissionPayout `json:"payout"`
	Outcome       string                   `json:"outcome"`
	ACH           *ach.Result              `json:"ach,omitempty"`
	FailureReason string                   `json:"failure_reason,omitempty"`
}

// ListInput filters payout listings.
type ListInput struct {
	Status *enums.PayoutStatus
	Page   pagination.Params
	Actor  Actor
}

// PolicyPreview is one policy's result in a commission preview.
type PolicyPreview struct {
	Breakdown *commission.Breakdown `json:"breakdown,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// PreviewResult shows the commission under every policy without persisting anything.
type PreviewResult struct {
	TransactionID uuid.UUID                                 `json:"transaction_id"`
	AgentName     string                                    `json:"agent_name"`
	Deal          commission.Deal                           `json:"deal"`
	Plan          commission.Plan                           `json:"plan"`
	ActivePolicy  enums.CalculationPolicy                   `json:"active_policy"`
	Policies      map[enums.CalculationPolicy]PolicyPreview `json:"policies"`
	Diverges      bool                                      `json:"diverges"`
}

// DealFromTransaction maps a stored deal onto calculator inputs.
func DealFromTransaction(txn *models.Transaction) commission.Deal {
	return commission.Deal{
		SalePrice:           txn.SalePrice,
		GrossCommissionRate: txn.GrossCommissionRate(),
		ReferralFeePct:      txn.ReferralFeePct,
	}
}
