package enums

import "fmt"

// AuditEventType labels rows in the transaction_events audit trail.
type AuditEventType string

const (
	AuditEventPayoutCreated    AuditEventType = "payout_created"
	AuditEventPayoutScheduled  AuditEventType = "payout_scheduled"
	AuditEventPayoutProcessing AuditEventType = "payout_processing"
	AuditEventPayoutPaid       AuditEventType = "payout_paid"
	AuditEventPayoutFailed     AuditEventType = "payout_failed"
	AuditEventPayoutCancelled  AuditEventType = "payout_cancelled"
)

var validAuditEventTypes = []AuditEventType{
	AuditEventPayoutCreated,
	AuditEventPayoutScheduled,
	AuditEventPayoutProcessing,
	AuditEventPayoutPaid,
	AuditEventPayoutFailed,
	AuditEventPayoutCancelled,
}

// IsValid reports whether the value matches a known audit event type.
func (t AuditEventType) IsValid() bool {
	for _, candidate := range validAuditEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// AgentVisible reports whether agents see this event in their own views.
func (t AuditEventType) AgentVisible() bool {
	switch t {
	case AuditEventPayoutPaid, AuditEventPayoutFailed, AuditEventPayoutCancelled:
		return true
	default:
		return false
	}
}

// AuditEventForStatus returns the event type recorded when a payout enters status.
func AuditEventForStatus(status PayoutStatus) (AuditEventType, error) {
	switch status {
	case PayoutStatusReady:
		return AuditEventPayoutCreated, nil
	case PayoutStatusScheduled:
		return AuditEventPayoutScheduled, nil
	case PayoutStatusProcessing:
		return AuditEventPayoutProcessing, nil
	case PayoutStatusPaid:
		return AuditEventPayoutPaid, nil
	case PayoutStatusFailed:
		return AuditEventPayoutFailed, nil
	case PayoutStatusCancelled:
		return AuditEventPayoutCancelled, nil
	default:
		return "", fmt.Errorf("no audit event for payout status %q", status)
	}
}
