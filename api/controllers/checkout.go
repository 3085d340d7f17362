package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/api/responses"
	"github.com/andreshurtado/reparalo-backend/api/validators"
	"github.com/andreshurtado/reparalo-backend/internal/cart"
	"github.com/andreshurtado/reparalo-backend/internal/catalog"
	"github.com/andreshurtado/reparalo-backend/internal/payment"
	"github.com/andreshurtado/reparalo-backend/internal/pricing"
	"github.com/andreshurtado/reparalo-backend/internal/settlement"
	"github.com/andreshurtado/reparalo-backend/pkg/config"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
)

// CheckoutQuote prices a cart without writing anything. The POS calls this on
// every cart mutation to refresh the displayed totals.
func CheckoutQuote(catalogSvc catalog.Service, paySvc *payment.Validator, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := buildCart(r.Context(), catalogSvc, payload.Lines, payload.Discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals := session.Totals(cfg.TaxRate()).Rounded()

		methods := []enums.PaymentMethod{}
		if paySvc != nil {
			methods = paySvc.EnabledMethods()
		}

		responses.WriteSuccess(w, quoteResponse{
			Lines:           newQuoteLines(session.Snapshot()),
			Totals:          newTotalsResponse(totals),
			EnabledMethods:  methods,
			DiscountPresets: cfg.QuickDiscountPresets,
			TaxRatePercent:  cfg.TaxRatePercent,
		})
	}
}

// CheckoutSettle confirms a checkout: preconditions, the durable write
// sequence, and the receipt. Partial failures come back with the failing step
// in the error details.
func CheckoutSettle(svc settlement.Service, catalogSvc catalog.Service, paySvc *payment.Validator, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}
		if catalogSvc == nil || paySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout dependencies unavailable"))
			return
		}

		var payload settleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := buildCart(r.Context(), catalogSvc, payload.Lines, payload.Discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := buildIntent(paySvc, session, payload, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := settlement.SettleInput{
			CartSessionID: payload.CartSessionID,
			Lines:         session.Snapshot(),
			Discount:      session.Discount(),
			Intent:        intent,
			CustomerID:    payload.CustomerID,
			WorkOrderID:   payload.WorkOrderID,
		}
		if payload.SaleID != nil {
			input.SaleID = *payload.SaleID
		}

		receipt, err := svc.Settle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newReceiptResponse(receipt))
	}
}

// SaleDetail returns a previously settled sale with its lines.
func SaleDetail(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetSale(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

func buildCart(ctx context.Context, catalogSvc catalog.Service, lines []checkoutLineRequest, discount *discountRequest) (*cart.Session, error) {
	session := cart.NewSession()
	now := time.Now()

	for _, reqLine := range lines {
		kind := enums.ItemKind(reqLine.Kind)
		var line pricing.Line

		switch kind {
		case enums.ItemKindProduct:
			product, err := catalogSvc.GetProduct(ctx, reqLine.ItemID)
			if err != nil {
				return nil, err
			}
			resolved := catalogSvc.ResolveUnitPrice(product, now)
			ceiling := product.Stock
			line = pricing.Line{
				ItemID:            product.ID,
				Kind:              kind,
				Name:              product.Name,
				UnitPrice:         resolved.UnitPrice,
				OriginalUnitPrice: resolved.Original,
				Quantity:          reqLine.Quantity,
				StockCeiling:      &ceiling,
			}
		case enums.ItemKindService:
			offering, err := catalogSvc.GetService(ctx, reqLine.ItemID)
			if err != nil {
				return nil, err
			}
			line = pricing.Line{
				ItemID:    offering.ID,
				Kind:      kind,
				Name:      offering.Name,
				UnitPrice: offering.Price,
				Quantity:  reqLine.Quantity,
			}
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item kind must be product or service")
		}

		if err := session.AddLine(line); err != nil {
			return nil, err
		}
	}

	if discount != nil {
		if err := session.SetDiscount(pricing.Discount{
			Type:  enums.DiscountType(discount.Type),
			Value: discount.Value,
		}); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func buildIntent(paySvc *payment.Validator, session *cart.Session, payload settleRequest, cfg config.CheckoutConfig) (*payment.Intent, error) {
	amountDue := session.Totals(cfg.TaxRate()).Rounded().Total
	if payload.Deposit {
		// Deposits settle an operator-chosen partial amount against a work
		// order; the amount is fixed before any method is selected.
		if payload.WorkOrderID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposits require a linked work order")
		}
		if payload.AmountDue == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount is required")
		}
		amountDue = *payload.AmountDue
	}

	intent, err := paySvc.NewIntent(amountDue, payload.Deposit)
	if err != nil {
		return nil, err
	}
	if err := intent.SelectMethod(enums.PaymentMethod(payload.Payment.Method)); err != nil {
		return nil, err
	}
	if payload.Payment.Tendered != nil {
		if err := intent.SetTendered(*payload.Payment.Tendered); err != nil {
			return nil, err
		}
	}
	if payload.Payment.PayerPhone != "" || payload.Payment.PayerName != "" {
		if err := intent.SetPayer(payload.Payment.PayerPhone, payload.Payment.PayerName); err != nil {
			return nil, err
		}
	}
	return intent, nil
}

type checkoutLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Kind     string    `json:"kind" validate:"required,oneof=product service"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type discountRequest struct {
	Type  string          `json:"type" validate:"required,oneof=none percentage fixed"`
	Value decimal.Decimal `json:"value"`
}

type paymentRequest struct {
	Method     string           `json:"method" validate:"required"`
	Tendered   *decimal.Decimal `json:"tendered_amount,omitempty"`
	PayerPhone string           `json:"payer_phone,omitempty"`
	PayerName  string           `json:"payer_name,omitempty"`
}

type quoteRequest struct {
	Lines    []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	Discount *discountRequest      `json:"discount,omitempty"`
}

type settleRequest struct {
	CartSessionID uuid.UUID             `json:"cart_session_id" validate:"required"`
	SaleID        *uuid.UUID            `json:"sale_id,omitempty"`
	Lines         []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	Discount      *discountRequest      `json:"discount,omitempty"`
	Payment       paymentRequest        `json:"payment"`
	Deposit       bool                  `json:"deposit"`
	AmountDue     *decimal.Decimal      `json:"amount_due,omitempty"`
	CustomerID    *uuid.UUID            `json:"customer_id,omitempty"`
	WorkOrderID   *uuid.UUID            `json:"work_order_id,omitempty"`
}

type quoteLineResponse struct {
	ItemID            uuid.UUID        `json:"item_id"`
	Kind              string           `json:"kind"`
	Name              string           `json:"name"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	OriginalUnitPrice *decimal.Decimal `json:"original_unit_price,omitempty"`
	Quantity          int              `json:"quantity"`
	LineTotal         decimal.Decimal  `json:"line_total"`
}

type totalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

type quoteResponse struct {
	Lines           []quoteLineResponse   `json:"lines"`
	Totals          totalsResponse        `json:"totals"`
	EnabledMethods  []enums.PaymentMethod `json:"enabled_methods"`
	DiscountPresets []int                 `json:"discount_presets"`
	TaxRatePercent  float64               `json:"tax_rate_percent"`
}

type loyaltyResponse struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	PointsDelta int64     `json:"points_delta"`
	PointsAfter int64     `json:"points_after"`
	Tier        string    `json:"tier"`
	TierMoved   bool      `json:"tier_moved"`
}

type workOrderResultResponse struct {
	WorkOrderID  uuid.UUID       `json:"work_order_id"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Paid         bool            `json:"paid"`
	Status       string          `json:"status"`
}

type receiptResponse struct {
	SaleID    uuid.UUID                `json:"sale_id"`
	Totals    totalsResponse           `json:"totals"`
	Method    string                   `json:"method"`
	Deposit   bool                     `json:"deposit"`
	ChangeDue decimal.Decimal          `json:"change_due"`
	Loyalty   *loyaltyResponse         `json:"loyalty,omitempty"`
	WorkOrder *workOrderResultResponse `json:"work_order,omitempty"`

	// SignalWarning is set when the sale settled but an integration signal
	// failed to queue; dashboards may lag until the next poll.
	SignalWarning string `json:"signal_warning,omitempty"`
}

func newQuoteLines(lines []pricing.Line) []quoteLineResponse {
	out := make([]quoteLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, quoteLineResponse{
			ItemID:            line.ItemID,
			Kind:              string(line.Kind),
			Name:              line.Name,
			UnitPrice:         line.UnitPrice,
			OriginalUnitPrice: line.OriginalUnitPrice,
			Quantity:          line.Quantity,
			LineTotal:         line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2),
		})
	}
	return out
}

func newTotalsResponse(totals pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxableAmount:  totals.TaxableAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
	}
}

func newReceiptResponse(receipt *settlement.Receipt) receiptResponse {
	out := receiptResponse{
		Totals:    newTotalsResponse(receipt.Totals),
		ChangeDue: receipt.ChangeDue,
	}
	if receipt.Sale != nil {
		out.SaleID = receipt.Sale.ID
		out.Method = string(receipt.Sale.Method)
		out.Deposit = receipt.Sale.Deposit
	}
	if receipt.Loyalty != nil {
		out.Loyalty = &loyaltyResponse{
			CustomerID:  receipt.Loyalty.CustomerID,
			PointsDelta: receipt.Loyalty.PointsDelta,
			PointsAfter: receipt.Loyalty.PointsAfter,
			Tier:        string(receipt.Loyalty.Tier),
			TierMoved:   receipt.Loyalty.TierMoved(),
		}
	}
	if receipt.WorkOrder != nil && receipt.WorkOrder.Order != nil {
		out.WorkOrder = &workOrderResultResponse{
			WorkOrderID:  receipt.WorkOrder.Order.ID,
			TotalPaid:    receipt.WorkOrder.TotalPaidAfter,
			BalanceAfter: receipt.WorkOrder.BalanceAfter,
			Paid:         receipt.WorkOrder.Paid,
			Status:       string(receipt.WorkOrder.Order.Status),
		}
	}
	if receipt.SignalError != nil {
		out.SignalWarning = "sale settled, but integration signals failed to queue"
	}
	return out
}
