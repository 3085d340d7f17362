package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, transaction *models.LedgerTransaction) error
	exists   bool
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, transaction *models.LedgerTransaction) error {
	if f.createFn != nil {
		return f.createFn(ctx, transaction)
	}
	return nil
}

func (f *fakeRepository) ExistsForSale(ctx context.Context, saleID uuid.UUID, transactionType enums.LedgerTransactionType) (bool, error) {
	return f.exists, nil
}

func (f *fakeRepository) ListBySaleID(ctx context.Context, saleID uuid.UUID) ([]models.LedgerTransaction, error) {
	return nil, nil
}

func validInput() RecordTransactionInput {
	return RecordTransactionInput{
		Type:        enums.LedgerTransactionTypeRevenue,
		Amount:      decimal.RequireFromString("89.20"),
		Method:      enums.PaymentMethodCash,
		Description: "sale revenue",
		SaleID:      uuid.New(),
	}
}

func TestService_RecordTransaction(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.LedgerTransaction
	repo.createFn = func(ctx context.Context, transaction *models.LedgerTransaction) error {
		created = transaction
		return nil
	}

	input := validInput()
	got, err := svc.RecordTransaction(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("RecordTransaction error: %v", err)
	}
	if created == nil {
		t.Fatal("expected ledger transaction to be created")
	}
	if created.SaleID != input.SaleID || created.Type != input.Type {
		t.Fatalf("unexpected ledger data: %+v", created)
	}
	if !created.Amount.Equal(input.Amount) {
		t.Fatalf("amount = %s, want %s", created.Amount, input.Amount)
	}
	if got != created {
		t.Fatal("service should return created transaction")
	}
}

func TestService_RecordTransactionSkipsExisting(t *testing.T) {
	repo := &fakeRepository{exists: true}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	repo.createFn = func(ctx context.Context, transaction *models.LedgerTransaction) error {
		t.Fatal("create must not be called when the row exists")
		return nil
	}

	got, err := svc.RecordTransaction(context.Background(), nil, validInput())
	if err != nil {
		t.Fatalf("RecordTransaction error: %v", err)
	}
	if got != nil {
		t.Fatalf("already-applied transaction should return nil, got %+v", got)
	}
}

func TestService_RecordTransactionValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecordTransactionInput)
	}{
		{"missing sale id", func(i *RecordTransactionInput) { i.SaleID = uuid.Nil }},
		{"invalid type", func(i *RecordTransactionInput) { i.Type = "not_real" }},
		{"invalid method", func(i *RecordTransactionInput) { i.Method = "barter" }},
		{"negative amount", func(i *RecordTransactionInput) { i.Amount = decimal.RequireFromString("-1") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if _, err := svc.RecordTransaction(context.Background(), nil, input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_RecordTransactionRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expectedErr := errors.New("boom")
	repo.createFn = func(ctx context.Context, transaction *models.LedgerTransaction) error {
		return expectedErr
	}

	if _, err := svc.RecordTransaction(context.Background(), nil, validInput()); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestService_HasTransactionForSale(t *testing.T) {
	repo := &fakeRepository{exists: true}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.HasTransactionForSale(context.Background(), uuid.New(), enums.LedgerTransactionTypeRevenue)
	if err != nil {
		t.Fatalf("HasTransactionForSale error: %v", err)
	}
	if !got {
		t.Fatal("expected existing transaction to be reported")
	}

	if _, err := svc.HasTransactionForSale(context.Background(), uuid.Nil, enums.LedgerTransactionTypeRevenue); err == nil {
		t.Fatal("expected rejection of nil sale id")
	}
}
