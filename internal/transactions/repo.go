package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/closingdesk/commission-backend/internal/repo"
	"github.com/closingdesk/commission-backend/pkg/db/models"
)

// Repository reads deals. Intake owns writes; Create exists for seeding.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Create(ctx context.Context, txn *models.Transaction) error
}

type repository struct {
	base repo.Base
}

// NewRepository returns a transactions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

// FindByID returns gorm.ErrRecordNotFound when the deal does not exist.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return repo.First[models.Transaction](r.base.DB(ctx), "id = ?", id)
}

func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(txn).Error
}
