package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	"github.com/closingdesk/commission-backend/pkg/visibility"
)

// Service records the transaction audit trail.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.TransactionEvent, error)
	List(ctx context.Context, transactionID uuid.UUID, agentView bool) ([]models.TransactionEvent, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordInput captures the immutable data an audit event requires.
type RecordInput struct {
	TransactionID uuid.UUID
	PayoutID      *uuid.UUID
	EventType     enums.AuditEventType
	ActorName     string
	ActorID       *uuid.UUID
	Metadata      map[string]any
	// VisibleToAgent overrides the event type's default visibility when set.
	VisibleToAgent *bool
}

// TransitionMetadata is the metadata every status-change event carries.
func TransitionMetadata(previous, next enums.PayoutStatus, extra map[string]any) map[string]any {
	meta := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		meta[k] = v
	}
	meta["previous_status"] = previous
	meta["new_status"] = next
	return meta
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.TransactionEvent, error) {
	if input.TransactionID == uuid.Nil {
		return nil, fmt.Errorf("transaction id is required")
	}
	if input.ActorName == "" {
		return nil, fmt.Errorf("actor name is required")
	}
	if !input.EventType.IsValid() {
		return nil, fmt.Errorf("invalid audit event type %q", input.EventType)
	}

	var metadata json.RawMessage
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode audit metadata: %w", err)
		}
		metadata = raw
	}

	visible := input.EventType.AgentVisible()
	if input.VisibleToAgent != nil {
		visible = *input.VisibleToAgent
	}

	// v7 ids are time ordered, so events sharing a timestamp still list in insertion order
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate audit event id: %w", err)
	}
	event := &models.TransactionEvent{
		ID:             id,
		TransactionID:  input.TransactionID,
		PayoutID:       input.PayoutID,
		EventType:      input.EventType,
		ActorName:      input.ActorName,
		ActorID:        input.ActorID,
		Metadata:       metadata,
		VisibleToAgent: visible,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) List(ctx context.Context, transactionID uuid.UUID, agentView bool) ([]models.TransactionEvent, error) {
	if transactionID == uuid.Nil {
		return nil, fmt.Errorf("transaction id is required")
	}
	events, err := s.repo.ListByTransactionID(ctx, transactionID, agentView)
	if err != nil {
		return nil, err
	}
	if agentView {
		return visibility.FilterAgentEvents(events), nil
	}
	if events == nil {
		events = []models.TransactionEvent{}
	}
	return events, nil
}
