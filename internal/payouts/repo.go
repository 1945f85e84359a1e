package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/closingdesk/commission-backend/internal/repo"
	"github.com/closingdesk/commission-backend/pkg/db/models"
	"github.com/closingdesk/commission-backend/pkg/enums"
	"github.com/closingdesk/commission-backend/pkg/pagination"
)

// ErrVersionConflict is returned when the stored version moved under the caller.
var ErrVersionConflict = errors.New("payout was modified concurrently")

// ListFilter narrows payout listings.
type ListFilter struct {
	Status  *enums.PayoutStatus
	AgentID *uuid.UUID
}

// Repository persists commission payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.CommissionPayout) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CommissionPayout, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionPayout, error)
	ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error)
	UpdateWithVersion(ctx context.Context, payout *models.CommissionPayout, expectedVersion int) error
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.CommissionPayout, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a payout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, payout *models.CommissionPayout) error {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(payout).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CommissionPayout, error) {
	return repo.First[models.CommissionPayout](r.base.DB(ctx), "id = ?", id)
}

func (r *repository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionPayout, error) {
	return repo.First[models.CommissionPayout](r.base.DB(ctx), "transaction_id = ?", transactionID)
}

func (r *repository) ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.base.DB(ctx).
		Model(&models.CommissionPayout{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateWithVersion writes every mutable column when the row still carries expectedVersion.
func (r *repository) UpdateWithVersion(ctx context.Context, payout *models.CommissionPayout, expectedVersion int) error {
	updatedAt := payout.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	result := r.base.DB(ctx).
		Model(&models.CommissionPayout{}).
		Where("id = ? AND version = ?", payout.ID, expectedVersion).
		Updates(map[string]any{
			"status":               payout.Status,
			"payment_method":       payout.PaymentMethod,
			"ach_provider":         payout.ACHProvider,
			"payment_reference":    payout.PaymentReference,
			"provider_details":     payout.ProviderDetails,
			"provider_fee":         payout.ProviderFee,
			"estimated_completion": payout.EstimatedCompletion,
			"failure_reason":       payout.FailureReason,
			"scheduled_date":       payout.ScheduledDate,
			"scheduled_at":         payout.ScheduledAt,
			"processing_at":        payout.ProcessingAt,
			"paid_at":              payout.PaidAt,
			"failed_at":            payout.FailedAt,
			"cancelled_at":         payout.CancelledAt,
			"version":              payout.Version,
			"updated_at":           updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	payout.UpdatedAt = updatedAt
	return nil
}

// List returns up to limit+1 rows, newest first, so callers can detect another page.
func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.CommissionPayout, error) {
	q := r.base.DB(ctx).Model(&models.CommissionPayout{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.AgentID != nil {
		q = q.Where("agent_id = ?", *filter.AgentID)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CommissionPayout
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
