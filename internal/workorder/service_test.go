package workorder

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

type fakeRepository struct {
	order    *models.WorkOrder
	hasEvent bool
	updated  *models.WorkOrder
	appended *models.WorkOrderEvent
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	if f.order == nil || f.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.order
	return &copied, nil
}

func (f *fakeRepository) UpdateBalance(ctx context.Context, order *models.WorkOrder) error {
	f.updated = order
	return nil
}

func (f *fakeRepository) AppendEvent(ctx context.Context, event *models.WorkOrderEvent) error {
	f.appended = event
	return nil
}

func (f *fakeRepository) HasEventForReference(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	return f.hasEvent, nil
}

func (f *fakeRepository) ListEvents(ctx context.Context, workOrderID uuid.UUID) ([]models.WorkOrderEvent, error) {
	return nil, nil
}

func TestService_ApplyPayment(t *testing.T) {
	order := &models.WorkOrder{
		ID:        uuid.New(),
		Total:     dec("150.00"),
		TotalPaid: dec("50.00"),
		Status:    enums.WorkOrderStatusInRepair,
	}
	repo := &fakeRepository{order: order}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	saleID := uuid.New()
	got, err := svc.ApplyPayment(context.Background(), nil, ApplyPaymentInput{
		WorkOrderID: order.ID,
		SaleID:      saleID,
		Amount:      dec("100.00"),
		Method:      enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}
	if got.AlreadyApplied {
		t.Fatal("fresh payment reported as already applied")
	}
	if !got.BalanceAfter.IsZero() || !got.Paid {
		t.Fatalf("unexpected reconciliation: %+v", got.Reconciliation)
	}
	if repo.updated == nil || repo.updated.Status != enums.WorkOrderStatusReadyForPickup {
		t.Fatalf("order status not moved: %+v", repo.updated)
	}
	if repo.appended == nil || repo.appended.ReferenceID == nil || *repo.appended.ReferenceID != saleID {
		t.Fatalf("payment event missing sale reference: %+v", repo.appended)
	}
	if repo.appended.Kind != "payment" {
		t.Fatalf("event kind = %q, want payment", repo.appended.Kind)
	}
}

func TestService_ApplyPaymentIdempotent(t *testing.T) {
	order := &models.WorkOrder{
		ID:        uuid.New(),
		Total:     dec("100.00"),
		TotalPaid: dec("100.00"),
		Status:    enums.WorkOrderStatusReadyForPickup,
	}
	repo := &fakeRepository{order: order, hasEvent: true}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.ApplyPayment(context.Background(), nil, ApplyPaymentInput{
		WorkOrderID: order.ID,
		SaleID:      uuid.New(),
		Amount:      dec("100.00"),
		Method:      enums.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}
	if !got.AlreadyApplied {
		t.Fatal("re-driven payment should report already applied")
	}
	if repo.updated != nil || repo.appended != nil {
		t.Fatal("re-driven payment must not write")
	}
	if !got.TotalPaidAfter.Equal(dec("100.00")) {
		t.Fatalf("total paid after = %s, want unchanged 100.00", got.TotalPaidAfter)
	}
}

func TestService_ApplyPaymentDepositKeepsStatus(t *testing.T) {
	order := &models.WorkOrder{
		ID:        uuid.New(),
		Total:     dec("100.00"),
		TotalPaid: decimal.Zero,
		Status:    enums.WorkOrderStatusDiagnosing,
	}
	repo := &fakeRepository{order: order}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.ApplyPayment(context.Background(), nil, ApplyPaymentInput{
		WorkOrderID: order.ID,
		SaleID:      uuid.New(),
		Amount:      dec("100.00"),
		Method:      enums.PaymentMethodCash,
		Deposit:     true,
	})
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}
	if got.StatusTransition != nil {
		t.Fatal("deposit proposed a status transition")
	}
	if repo.updated.Status != enums.WorkOrderStatusDiagnosing {
		t.Fatalf("deposit changed status to %s", repo.updated.Status)
	}
	if repo.appended.Note != "deposit collected at checkout" {
		t.Fatalf("unexpected event note: %q", repo.appended.Note)
	}
}

func TestService_ApplyPaymentValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	cases := []ApplyPaymentInput{
		{SaleID: uuid.New(), Amount: dec("10"), Method: enums.PaymentMethodCash},
		{WorkOrderID: uuid.New(), Amount: dec("10"), Method: enums.PaymentMethodCash},
		{WorkOrderID: uuid.New(), SaleID: uuid.New(), Amount: decimal.Zero, Method: enums.PaymentMethodCash},
	}
	for i, input := range cases {
		if _, err := svc.ApplyPayment(context.Background(), nil, input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestService_GetOrderNotFound(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.GetOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestService_OutstandingBalanceClamps(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	order := &models.WorkOrder{Total: dec("50.00"), TotalPaid: dec("80.00")}
	if got := svc.OutstandingBalance(order); !got.IsZero() {
		t.Fatalf("outstanding = %s, want 0", got)
	}
}
