package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/andreshurtado/reparalo-backend/pkg/db"
	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Service defines operations that record money events.
type Service interface {
	RecordTransaction(ctx context.Context, tx *gorm.DB, input RecordTransactionInput) (*models.LedgerTransaction, error)
	HasTransactionForSale(ctx context.Context, saleID uuid.UUID, transactionType enums.LedgerTransactionType) (bool, error)
}

// RecordTransactionInput captures the immutable data a ledger row requires.
// SaleID doubles as the idempotency key per transaction type.
type RecordTransactionInput struct {
	Type        enums.LedgerTransactionType
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Description string
	SaleID      uuid.UUID
	WorkOrderID *uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// RecordTransaction inserts a ledger row. A re-driven settlement that already
// recorded the row is treated as applied, not an error.
func (s *service) RecordTransaction(ctx context.Context, tx *gorm.DB, input RecordTransactionInput) (*models.LedgerTransaction, error) {
	if input.SaleID == uuid.Nil {
		return nil, fmt.Errorf("sale id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger transaction type %q", input.Type)
	}
	if !input.Method.IsValid() {
		return nil, fmt.Errorf("invalid payment method %q", input.Method)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	repo := s.repo.WithTx(tx)

	exists, err := repo.ExistsForSale(ctx, input.SaleID, input.Type)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	transaction := &models.LedgerTransaction{
		Type:        input.Type,
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
		SaleID:      input.SaleID,
		WorkOrderID: input.WorkOrderID,
	}
	if err := repo.Create(ctx, transaction); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_ledger_transactions_sale_type") {
			return nil, nil
		}
		return nil, err
	}
	return transaction, nil
}

func (s *service) HasTransactionForSale(ctx context.Context, saleID uuid.UUID, transactionType enums.LedgerTransactionType) (bool, error) {
	if saleID == uuid.Nil {
		return false, fmt.Errorf("sale id is required")
	}
	if !transactionType.IsValid() {
		return false, fmt.Errorf("invalid ledger transaction type %q", transactionType)
	}
	return s.repo.ExistsForSale(ctx, saleID, transactionType)
}
