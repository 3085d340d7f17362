package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/internal/catalog"
	"github.com/andreshurtado/reparalo-backend/internal/ledger"
	"github.com/andreshurtado/reparalo-backend/internal/loyalty"
	"github.com/andreshurtado/reparalo-backend/internal/payment"
	"github.com/andreshurtado/reparalo-backend/internal/pricing"
	"github.com/andreshurtado/reparalo-backend/internal/workorder"
	"github.com/andreshurtado/reparalo-backend/pkg/config"
	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
	"github.com/andreshurtado/reparalo-backend/pkg/metrics"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox/payloads"
)

// Step names used in failure details and metrics labels.
const (
	StepSale      = "sale"
	StepLedger    = "ledger"
	StepInventory = "inventory"
	StepLoyalty   = "loyalty"
	StepWorkOrder = "work_order"
	StepSignals   = "signals"
)

const lockScope = "settle"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type drawerGate interface {
	AssertSettleable(ctx context.Context) (*models.DrawerSession, error)
}

type locker interface {
	AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, scope, id string) error
}

// SettleInput is everything the confirm action hands to the orchestrator.
// CartSessionID identifies the checkout session and backs the re-entrancy
// guard, so duplicate confirm clicks for the same cart contend on one key;
// SaleID is set only when re-driving a partially recorded settlement.
type SettleInput struct {
	CartSessionID uuid.UUID
	SaleID        uuid.UUID
	Lines         []pricing.Line
	Discount      pricing.Discount
	Intent        *payment.Intent
	CustomerID    *uuid.UUID
	WorkOrderID   *uuid.UUID
}

// Receipt is the outcome handed back to the operator after a settlement.
type Receipt struct {
	Sale      *models.Sale
	Totals    pricing.Totals
	ChangeDue decimal.Decimal
	Loyalty   *loyalty.AccrualResult
	WorkOrder *workorder.ApplyPaymentResult

	// SignalError carries a non-fatal signal emission failure. The
	// settlement itself succeeded when this is the only error.
	SignalError error
}

// Service sequences the settlement writes. The writes are durable but not
// atomic: each step commits independently, in a fixed order, and a failure
// mid-sequence leaves earlier steps committed.
type Service interface {
	Settle(ctx context.Context, input SettleInput) (*Receipt, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	drawer    drawerGate
	catalog   catalog.Repository
	ledger    ledger.Service
	loyalty   loyalty.Service
	workOrder workorder.Service
	outbox    outbox.Publisher
	locks     locker
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	cfg       config.CheckoutConfig
	now       func() time.Time
}

// NewService builds the settlement orchestrator.
func NewService(
	tx txRunner,
	repo Repository,
	drawer drawerGate,
	catalogRepo catalog.Repository,
	ledgerSvc ledger.Service,
	loyaltySvc loyalty.Service,
	workOrderSvc workorder.Service,
	publisher outbox.Publisher,
	locks locker,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if drawer == nil {
		return nil, fmt.Errorf("drawer gate required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if loyaltySvc == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if workOrderSvc == nil {
		return nil, fmt.Errorf("work order service required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		drawer:    drawer,
		catalog:   catalogRepo,
		ledger:    ledgerSvc,
		loyalty:   loyaltySvc,
		workOrder: workOrderSvc,
		outbox:    publisher,
		locks:     locks,
		metrics:   checkoutMetrics,
		logg:      logg,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, err
	}
	return sale, nil
}

// Settle runs the full sequence: preconditions, then five durable writes in
// fixed order, then best-effort integration signals. Once the first write
// lands there is no rollback; failures surface with the failing step so the
// operator can verify state before retrying.
func (s *service) Settle(ctx context.Context, input SettleInput) (*Receipt, error) {
	started := s.now()

	if input.CartSessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	// The drawer gate fires before payment readiness: a closed drawer blocks
	// the confirm action no matter what state the intent is in.
	session, err := s.drawer.AssertSettleable(ctx)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDrawerClosed {
			s.metrics.IncDrawerBlocked()
		}
		return nil, err
	}

	if err := s.checkPaymentReady(input.Intent); err != nil {
		return nil, err
	}

	var linkedOrder *models.WorkOrder
	if input.WorkOrderID != nil {
		linkedOrder, err = s.workOrder.GetOrder(ctx, *input.WorkOrderID)
		if err != nil {
			return nil, err
		}
		outstanding := s.workOrder.OutstandingBalance(linkedOrder)
		if input.Intent.AmountDue().GreaterThan(outstanding) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount due exceeds the order's outstanding balance").
				WithDetails(map[string]any{
					"amount_due":  input.Intent.AmountDue().String(),
					"outstanding": outstanding.String(),
				})
		}
	}

	acquired, err := s.locks.AcquireLock(ctx, lockScope, input.CartSessionID.String(), s.cfg.SettleLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring settlement lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "settlement already in progress for this cart")
	}
	defer func() {
		if err := s.locks.ReleaseLock(ctx, lockScope, input.CartSessionID.String()); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("releasing settlement lock: %v", err))
		}
	}()

	totals := pricing.ComputeTotals(input.Lines, input.Discount, s.cfg.TaxRate()).Rounded()
	ctx = s.logg.WithFields(ctx, map[string]any{
		"cart_session_id": input.CartSessionID.String(),
		"method":          string(input.Intent.Method()),
		"total":           totals.Total.String(),
	})

	sale, err := s.writeSale(ctx, input, session, totals)
	if err != nil {
		return nil, s.writeFailure(ctx, StepSale, input.SaleID, err)
	}
	ctx = s.logg.WithSaleID(ctx, sale.ID.String())

	if err := s.writeLedger(ctx, sale); err != nil {
		return nil, s.writeFailure(ctx, StepLedger, sale.ID, err)
	}

	if err := s.writeInventory(ctx, input.Lines, sale.ID); err != nil {
		return nil, s.writeFailure(ctx, StepInventory, sale.ID, err)
	}

	receipt := &Receipt{Sale: sale, Totals: totals, ChangeDue: input.Intent.ChangeDue()}

	if input.CustomerID != nil && !input.Intent.Deposit() {
		accrual, err := s.writeLoyalty(ctx, *input.CustomerID, totals.Total)
		if err != nil {
			return nil, s.writeFailure(ctx, StepLoyalty, sale.ID, err)
		}
		receipt.Loyalty = accrual
	}

	if input.WorkOrderID != nil {
		applied, err := s.writeWorkOrder(ctx, input, sale)
		if err != nil {
			return nil, s.writeFailure(ctx, StepWorkOrder, sale.ID, err)
		}
		receipt.WorkOrder = applied
	}

	// Signal failures are non-fatal: the settlement is durable at this
	// point and dashboards fall back to polling.
	if err := s.emitSignals(ctx, sale); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("integration signals failed: %v", err))
		receipt.SignalError = err
	}

	s.metrics.IncSettled(string(sale.Method))
	s.metrics.ObserveDuration(string(sale.Method), s.now().Sub(started))
	s.logg.Info(ctx, "settlement completed")
	return receipt, nil
}

func (s *service) checkPaymentReady(intent *payment.Intent) error {
	if intent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent required")
	}
	if intent.State() != payment.StateReady {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment is not ready")
	}
	return nil
}

func (s *service) writeSale(ctx context.Context, input SettleInput, session *models.DrawerSession, totals pricing.Totals) (*models.Sale, error) {
	saleID := input.SaleID
	if saleID == uuid.Nil {
		saleID = uuid.New()
	} else {
		// Re-driven settlements reuse the sale from the first attempt.
		exists, err := s.repo.SaleExists(ctx, saleID)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logg.Info(ctx, "sale already recorded, re-driving remaining steps")
			return s.repo.FindSaleByID(ctx, saleID)
		}
	}

	sale := &models.Sale{
		ID:              saleID,
		DrawerSessionID: session.ID,
		Subtotal:        totals.Subtotal,
		DiscountType:    input.Discount.Type,
		DiscountValue:   input.Discount.Value,
		DiscountAmount:  totals.DiscountAmount,
		TaxRate:         s.cfg.TaxRate(),
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		AmountPaid:      input.Intent.AmountPaid(),
		ChangeDue:       input.Intent.ChangeDue(),
		Method:          input.Intent.Method(),
		Deposit:         input.Intent.Deposit(),
		CustomerID:      input.CustomerID,
		WorkOrderID:     input.WorkOrderID,
	}
	for _, line := range input.Lines {
		sale.Lines = append(sale.Lines, models.SaleLine{
			SaleID:            saleID,
			ItemID:            line.ItemID,
			Kind:              line.Kind,
			Name:              line.Name,
			UnitPrice:         line.UnitPrice,
			OriginalUnitPrice: line.OriginalUnitPrice,
			Quantity:          line.Quantity,
			LineTotal:         line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2),
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) writeLedger(ctx context.Context, sale *models.Sale) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.ledger.RecordTransaction(ctx, tx, ledger.RecordTransactionInput{
			Type:        enums.LedgerTransactionTypeRevenue,
			Amount:      sale.Total,
			Method:      sale.Method,
			Description: fmt.Sprintf("sale %s", sale.ID),
			SaleID:      sale.ID,
			WorkOrderID: sale.WorkOrderID,
		})
		return err
	})
}

// writeInventory decrements stock per product line with a fresh read each
// time; concurrent settlements from other terminals may have moved it since
// the cart snapshot. Stock clamps at zero, never negative.
func (s *service) writeInventory(ctx context.Context, lines []pricing.Line, saleID uuid.UUID) error {
	for _, line := range lines {
		if line.Kind != enums.ItemKindProduct {
			continue
		}
		line := line
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			applied, err := repo.HasMovement(ctx, line.ItemID, saleID)
			if err != nil {
				return err
			}
			if applied {
				return nil
			}

			catalogRepo := s.catalog.WithTx(tx)
			product, err := catalogRepo.FindProductByID(ctx, line.ItemID)
			if err != nil {
				return err
			}
			newStock := product.Stock - line.Quantity
			if newStock < 0 {
				newStock = 0
			}
			if err := catalogRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
				return err
			}
			if err := repo.CreateMovement(ctx, &models.InventoryMovement{
				ProductID:     product.ID,
				PreviousStock: product.Stock,
				NewStock:      newStock,
				Quantity:      line.Quantity,
				Reason:        enums.MovementReasonSale,
				ReferenceID:   saleID,
			}); err != nil {
				return err
			}
			// The movement check above already dedupes re-drives, so a
			// plain emit is safe here.
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventStockLevelChanged,
				AggregateType: enums.AggregateSale,
				AggregateID:   saleID,
				Data: payloads.StockLevelChangedEvent{
					ProductID: product.ID,
					NewStock:  newStock,
					SaleID:    saleID,
				},
				Version: 1,
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeLoyalty(ctx context.Context, customerID uuid.UUID, total decimal.Decimal) (*loyalty.AccrualResult, error) {
	var accrual *loyalty.AccrualResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		accrual, err = s.loyalty.ApplyAccrual(ctx, tx, customerID, total)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accrual, nil
}

func (s *service) writeWorkOrder(ctx context.Context, input SettleInput, sale *models.Sale) (*workorder.ApplyPaymentResult, error) {
	var applied *workorder.ApplyPaymentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		applied, err = s.workOrder.ApplyPayment(ctx, tx, workorder.ApplyPaymentInput{
			WorkOrderID: *input.WorkOrderID,
			SaleID:      sale.ID,
			Amount:      sale.AmountPaid,
			Method:      sale.Method,
			Deposit:     sale.Deposit,
		})
		if err != nil {
			return err
		}
		status := applied.Order.Status
		if applied.StatusTransition != nil {
			status = *applied.StatusTransition
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWorkOrderSettled,
			AggregateType: enums.AggregateWorkOrder,
			AggregateID:   *input.WorkOrderID,
			Data: payloads.WorkOrderSettledEvent{
				WorkOrderID:  *input.WorkOrderID,
				SaleID:       sale.ID,
				AmountPaid:   sale.AmountPaid,
				BalanceAfter: applied.BalanceAfter,
				Status:       status,
				Deposit:      sale.Deposit,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// emitSignals queues the two integration signals, each in its own small
// transaction so one failure does not doom the other.
func (s *service) emitSignals(ctx context.Context, sale *models.Sale) error {
	var combined error
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDataChanged,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Data: payloads.DataChangedEvent{
				Scopes: []string{"sales", "inventory", "customers", "work_orders"},
			},
			Version: 1,
		})
	})
	combined = multierr.Append(combined, err)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleCompleted,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Data: payloads.SaleCompletedEvent{
				SaleID: sale.ID,
				Amount: sale.Total,
				Method: sale.Method,
			},
			Version: 1,
		})
	})
	return multierr.Append(combined, err)
}

func (s *service) writeFailure(ctx context.Context, step string, saleID uuid.UUID, err error) error {
	s.metrics.IncFailed(step)
	s.logg.Error(ctx, fmt.Sprintf("settlement step %s failed", step), err)
	details := map[string]any{"step": step}
	if saleID != uuid.Nil {
		details["sale_id"] = saleID.String()
	}
	return pkgerrors.Wrap(pkgerrors.CodeSettlementWrite, err,
		fmt.Sprintf("settlement stopped at %s, earlier steps remain committed", step)).
		WithDetails(details)
}
