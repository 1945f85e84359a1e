package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closingdesk/commission-backend/pkg/db/dbtest"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
)

func TestRepositoryListOrdersAndFilters(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	txnID := uuid.New()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	types := []enums.AuditEventType{
		enums.AuditEventPayoutCreated,
		enums.AuditEventPayoutScheduled,
		enums.AuditEventPayoutProcessing,
		enums.AuditEventPayoutPaid,
	}
	// insert out of order to prove sorting
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(t, repo.Create(ctx, &models.TransactionEvent{
			ID:             uuid.New(),
			TransactionID:  txnID,
			EventType:      types[i],
			ActorName:      "system",
			Metadata:       []byte(`{"step":1}`),
			VisibleToAgent: types[i].AgentVisible(),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.TransactionEvent{
		ID: uuid.New(), TransactionID: uuid.New(), EventType: enums.AuditEventPayoutCreated, ActorName: "other", CreatedAt: base,
	}))

	all, err := repo.ListByTransactionID(ctx, txnID, false)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, event := range all {
		assert.Equal(t, types[i], event.EventType)
	}
	assert.JSONEq(t, `{"step":1}`, string(all[0].Metadata))

	agent, err := repo.ListByTransactionID(ctx, txnID, true)
	require.NoError(t, err)
	require.Len(t, agent, 1)
	assert.Equal(t, enums.AuditEventPayoutPaid, agent[0].EventType)
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()
	txnID := uuid.New()

	tx := db.Begin()
	require.NoError(t, repo.WithTx(tx).Create(ctx, &models.TransactionEvent{
		ID: uuid.New(), TransactionID: txnID, EventType: enums.AuditEventPayoutCreated, ActorName: "system", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, tx.Rollback().Error)

	events, err := repo.ListByTransactionID(ctx, txnID, false)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestServiceListKeepsInsertionOrderWithinOneInstant(t *testing.T) {
	db := dbtest.NewSQLite(t)
	frozen := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(db), func() time.Time { return frozen })
	require.NoError(t, err)
	ctx := context.Background()

	txnID := uuid.New()
	steps := []enums.AuditEventType{
		enums.AuditEventPayoutCreated,
		enums.AuditEventPayoutScheduled,
		enums.AuditEventPayoutProcessing,
		enums.AuditEventPayoutFailed,
		enums.AuditEventPayoutScheduled,
		enums.AuditEventPayoutProcessing,
		enums.AuditEventPayoutPaid,
	}
	for _, step := range steps {
		_, err := svc.Record(ctx, RecordInput{TransactionID: txnID, EventType: step, ActorName: "system"})
		require.NoError(t, err)
	}

	events, err := svc.List(ctx, txnID, false)
	require.NoError(t, err)
	require.Len(t, events, len(steps))
	for i, event := range events {
		assert.Equal(t, steps[i], event.EventType, "position %d", i)
		assert.Equal(t, uuid.Version(7), event.ID.Version())
	}
}
