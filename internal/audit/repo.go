package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/closingdesk/commission-backend/internal/repo"
	"github.com/closingdesk/commission-backend/pkg/db/models"
)

// Repository appends and reads transaction_events. There is no update or delete path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.TransactionEvent) error
	ListByTransactionID(ctx context.Context, transactionID uuid.UUID, agentOnly bool) ([]models.TransactionEvent, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, event *models.TransactionEvent) error {
	return r.base.DB(ctx).Create(event).Error
}

func (r *repository) ListByTransactionID(ctx context.Context, transactionID uuid.UUID, agentOnly bool) ([]models.TransactionEvent, error) {
	var events []models.TransactionEvent
	q := r.base.DB(ctx).Where("transaction_id = ?", transactionID)
	if agentOnly {
		q = q.Where("visible_to_agent = ?", true)
	}
	if err := q.Order("created_at ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
