package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

// CommissionPayout is the money owed to an agent for exactly one transaction.
type CommissionPayout struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID       uuid.UUID               `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`
	AgentID             uuid.UUID               `gorm:"column:agent_id;type:uuid;not null" json:"agent_id"`
	AgentName           string                  `gorm:"column:agent_name;not null" json:"agent_name"`
	BrokerageID         uuid.UUID               `gorm:"column:brokerage_id;type:uuid;not null" json:"brokerage_id"`
	PayoutAmount        decimal.Decimal         `gorm:"column:payout_amount;type:numeric(12,2);not null" json:"payout_amount"`
	GrossCommission     decimal.Decimal         `gorm:"column:gross_commission;type:numeric(12,2);not null" json:"gross_commission"`
	ReferralFee         decimal.Decimal         `gorm:"column:referral_fee;type:numeric(12,2);not null" json:"referral_fee"`
	FranchiseFee        decimal.Decimal         `gorm:"column:franchise_fee;type:numeric(12,2);not null" json:"franchise_fee"`
	AgentShare          decimal.Decimal         `gorm:"column:agent_share;type:numeric(12,2);not null" json:"agent_share"`
	BrokerageShare      decimal.Decimal         `gorm:"column:brokerage_share;type:numeric(12,2);not null" json:"brokerage_share"`
	DeductionsTotal     decimal.Decimal         `gorm:"column:deductions_total;type:numeric(12,2);not null" json:"deductions_total"`
	CalculationPolicy   enums.CalculationPolicy `gorm:"column:calculation_policy;not null" json:"calculation_policy"`
	Status              enums.PayoutStatus      `gorm:"column:status;type:payout_status;not null" json:"status"`
	PaymentMethod       *enums.PaymentMethod    `gorm:"column:payment_method;type:payment_method" json:"payment_method,omitempty"`
	ACHProvider         *enums.ACHProvider      `gorm:"column:ach_provider" json:"ach_provider,omitempty"`
	PaymentReference    *string                 `gorm:"column:payment_reference" json:"payment_reference,omitempty"`
	ProviderDetails     json.RawMessage         `gorm:"column:provider_details;type:jsonb" json:"provider_details,omitempty"`
	ProviderFee         *decimal.Decimal        `gorm:"column:provider_fee;type:numeric(12,2)" json:"provider_fee,omitempty"`
	EstimatedCompletion *time.Time              `gorm:"column:estimated_completion" json:"estimated_completion,omitempty"`
	FailureReason       *string                 `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	ScheduledDate       *time.Time              `gorm:"column:scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledAt         *time.Time              `gorm:"column:scheduled_at" json:"scheduled_at,omitempty"`
	ProcessingAt        *time.Time              `gorm:"column:processing_at" json:"processing_at,omitempty"`
	PaidAt              *time.Time              `gorm:"column:paid_at" json:"paid_at,omitempty"`
	FailedAt            *time.Time              `gorm:"column:failed_at" json:"failed_at,omitempty"`
	CancelledAt         *time.Time              `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Version             int                     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedBy           *uuid.UUID              `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name used by the dashboard.
func (CommissionPayout) TableName() string {
	return "commission_payouts"
}

// Clone returns a copy whose pointer fields can be changed without touching p.
func (p *CommissionPayout) Clone() *CommissionPayout {
	if p == nil {
		return nil
	}
	out := *p
	out.PaymentMethod = clonePtr(p.PaymentMethod)
	out.ACHProvider = clonePtr(p.ACHProvider)
	out.PaymentReference = clonePtr(p.PaymentReference)
	out.ProviderFee = clonePtr(p.ProviderFee)
	out.EstimatedCompletion = clonePtr(p.EstimatedCompletion)
	out.FailureReason = clonePtr(p.FailureReason)
	out.ScheduledDate = clonePtr(p.ScheduledDate)
	out.ScheduledAt = clonePtr(p.ScheduledAt)
	out.ProcessingAt = clonePtr(p.ProcessingAt)
	out.PaidAt = clonePtr(p.PaidAt)
	out.FailedAt = clonePtr(p.FailedAt)
	out.CancelledAt = clonePtr(p.CancelledAt)
	out.CreatedBy = clonePtr(p.CreatedBy)
	if p.ProviderDetails != nil {
		out.ProviderDetails = append(json.RawMessage(nil), p.ProviderDetails...)
	}
	return &out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
