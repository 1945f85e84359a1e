package visibility

import (
	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	pkgerrors "github.com/closingdesk/commission-backend/pkg/errors"
)

// Viewer identifies who is reading payout data.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAgent reports whether the viewer gets the agent-facing view.
func (v Viewer) IsAgent() bool {
	return !v.Role.CanManagePayouts()
}

// EnsurePayoutVisible hides payouts that belong to other agents. Staff roles see everything.
func EnsurePayoutVisible(viewer Viewer, payout *models.CommissionPayout) error {
	if payout == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
	}
	if !viewer.IsAgent() {
		return nil
	}
	if payout.AgentID != viewer.UserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
	}
	return nil
}

// EnsureTransactionVisible applies the same ownership rule to a deal.
func EnsureTransactionVisible(viewer Viewer, txn *models.Transaction) error {
	if txn == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	if viewer.IsAgent() && txn.AgentID != viewer.UserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return nil
}

// FilterAgentEvents keeps only the audit entries flagged for agent views.
func FilterAgentEvents(events []models.TransactionEvent) []models.TransactionEvent {
	out := make([]models.TransactionEvent, 0, len(events))
	for _, event := range events {
		if event.VisibleToAgent {
			out = append(out, event)
		}
	}
	return out
}
