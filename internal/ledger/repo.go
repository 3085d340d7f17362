package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Repository manages persistence for ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.LedgerTransaction) error
	ExistsForSale(ctx context.Context, saleID uuid.UUID, transactionType enums.LedgerTransactionType) (bool, error)
	ListBySaleID(ctx context.Context, saleID uuid.UUID) ([]models.LedgerTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.LedgerTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) ExistsForSale(ctx context.Context, saleID uuid.UUID, transactionType enums.LedgerTransactionType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerTransaction{}).
		Where("sale_id = ? AND type = ?", saleID, transactionType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListBySaleID(ctx context.Context, saleID uuid.UUID) ([]models.LedgerTransaction, error) {
	var transactions []models.LedgerTransaction
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
