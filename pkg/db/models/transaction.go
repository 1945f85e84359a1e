package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

// Transaction is a real-estate deal under commission review. Intake and
// coordinator verification own its lifecycle; payouts only read it.
type Transaction struct {
	ID                   uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SalePrice            decimal.Decimal         `gorm:"column:sale_price;type:numeric(14,2);not null" json:"sale_price"`
	ListingCommissionPct decimal.Decimal         `gorm:"column:listing_commission_pct;type:numeric(6,3);not null;default:0" json:"listing_commission_pct"`
	BuyerCommissionPct   decimal.Decimal         `gorm:"column:buyer_commission_pct;type:numeric(6,3);not null;default:0" json:"buyer_commission_pct"`
	ReferralFeePct       decimal.Decimal         `gorm:"column:referral_fee_pct;type:numeric(6,3);not null;default:0" json:"referral_fee_pct"`
	AgentSplitPct        *decimal.Decimal        `gorm:"column:agent_split_pct;type:numeric(6,3)" json:"agent_split_pct,omitempty"`
	AgentID              uuid.UUID               `gorm:"column:agent_id;type:uuid;not null" json:"agent_id"`
	AgentName            string                  `gorm:"column:agent_name;not null" json:"agent_name"`
	BrokerID             *uuid.UUID              `gorm:"column:broker_id;type:uuid" json:"broker_id,omitempty"`
	BrokerName           string                  `gorm:"column:broker_name" json:"broker_name,omitempty"`
	BrokerageID          uuid.UUID               `gorm:"column:brokerage_id;type:uuid;not null" json:"brokerage_id"`
	PropertyAddress      string                  `gorm:"column:property_address" json:"property_address,omitempty"`
	Status               enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null" json:"status"`
	CreatedAt            time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// GrossCommissionRate is the commission percentage the agent's side earns:
// the listing rate when present, otherwise the buyer rate.
func (t Transaction) GrossCommissionRate() decimal.Decimal {
	if t.ListingCommissionPct.GreaterThan(decimal.Zero) {
		return t.ListingCommissionPct
	}
	return t.BuyerCommissionPct
}
