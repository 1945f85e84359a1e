package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

// TransactionEvent is an immutable audit trail entry tied to a transaction.
type TransactionEvent struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID  uuid.UUID            `gorm:"column:transaction_id;type:uuid;not null" json:"transaction_id"`
	PayoutID       *uuid.UUID           `gorm:"column:payout_id;type:uuid" json:"payout_id,omitempty"`
	EventType      enums.AuditEventType `gorm:"column:event_type;not null" json:"event_type"`
	ActorName      string               `gorm:"column:actor_name;not null" json:"actor_name"`
	ActorID        *uuid.UUID           `gorm:"column:actor_id;type:uuid" json:"actor_id,omitempty"`
	Metadata       json.RawMessage      `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	VisibleToAgent bool                 `gorm:"column:visible_to_agent;not null;default:false" json:"visible_to_agent"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
