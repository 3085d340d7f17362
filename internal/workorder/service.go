package workorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/andreshurtado/reparalo-backend/pkg/db"
	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

const paymentEventKind = "payment"

// ApplyPaymentInput describes one settlement payment against an order. SaleID
// is the idempotency reference for the appended event.
type ApplyPaymentInput struct {
	WorkOrderID uuid.UUID
	SaleID      uuid.UUID
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Deposit     bool
}

// ApplyPaymentResult is the reconciliation outcome plus whether this call
// actually wrote anything.
type ApplyPaymentResult struct {
	Reconciliation
	AlreadyApplied bool
	Order          *models.WorkOrder
}

// Service reconciles settlement payments against repair orders.
type Service interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error)
	OutstandingBalance(order *models.WorkOrder) decimal.Decimal
	ApplyPayment(ctx context.Context, tx *gorm.DB, input ApplyPaymentInput) (*ApplyPaymentResult, error)
	ListEvents(ctx context.Context, workOrderID uuid.UUID) ([]models.WorkOrderEvent, error)
}

type service struct {
	repo Repository
}

// NewService wires a work-order service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("work order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) OutstandingBalance(order *models.WorkOrder) decimal.Decimal {
	balance := order.Total.Sub(order.TotalPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

func (s *service) ListEvents(ctx context.Context, workOrderID uuid.UUID) ([]models.WorkOrderEvent, error) {
	if workOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work order id required")
	}
	return s.repo.ListEvents(ctx, workOrderID)
}

// ApplyPayment writes the reconciled balance and appends the payment event.
// A sale that already left its event on the order is skipped, keeping
// re-driven settlements from double-applying the payment.
func (s *service) ApplyPayment(ctx context.Context, tx *gorm.DB, input ApplyPaymentInput) (*ApplyPaymentResult, error) {
	if input.WorkOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work order id required")
	}
	if input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	repo := s.repo.WithTx(tx)

	order, err := repo.FindByID(ctx, input.WorkOrderID)
	if err != nil {
		return nil, err
	}

	applied, err := repo.HasEventForReference(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	if applied {
		recon := Reconciliation{
			TotalPaidAfter: order.TotalPaid,
			BalanceAfter:   s.OutstandingBalance(order),
			Paid:           s.OutstandingBalance(order).LessThanOrEqual(paidEpsilon),
		}
		return &ApplyPaymentResult{Reconciliation: recon, AlreadyApplied: true, Order: order}, nil
	}

	recon := Reconcile(order, input.Amount, input.Deposit)

	order.TotalPaid = recon.TotalPaidAfter
	if recon.StatusTransition != nil {
		order.Status = *recon.StatusTransition
	}
	if err := repo.UpdateBalance(ctx, order); err != nil {
		return nil, err
	}

	method := input.Method
	saleID := input.SaleID
	event := &models.WorkOrderEvent{
		WorkOrderID:  order.ID,
		Kind:         paymentEventKind,
		Amount:       input.Amount,
		Method:       &method,
		BalanceAfter: recon.BalanceAfter,
		Note:         paymentNote(input.Deposit),
		ReferenceID:  &saleID,
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_work_order_events_reference") {
			return &ApplyPaymentResult{Reconciliation: recon, AlreadyApplied: true, Order: order}, nil
		}
		return nil, err
	}

	return &ApplyPaymentResult{Reconciliation: recon, Order: order}, nil
}

func paymentNote(deposit bool) string {
	if deposit {
		return "deposit collected at checkout"
	}
	return "payment collected at checkout"
}
