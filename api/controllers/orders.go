package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/api/responses"
	"github.com/andreshurtado/reparalo-backend/internal/workorder"
	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
)

// OrderDetail returns a work order with its outstanding balance.
func OrderDetail(svc workorder.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "work order service unavailable"))
			return
		}

		id, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, workOrderResponse{
			ID:                 order.ID,
			CustomerID:         order.CustomerID,
			Description:        order.Description,
			Status:             string(order.Status),
			Total:              order.Total,
			TotalPaid:          order.TotalPaid,
			OutstandingBalance: svc.OutstandingBalance(order),
			CreatedAt:          order.CreatedAt,
		})
	}
}

// OrderEvents returns the append-only history for a work order.
func OrderEvents(svc workorder.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "work order service unavailable"))
			return
		}

		id, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.ListEvents(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]workOrderEventResponse, 0, len(events))
		for _, event := range events {
			out = append(out, newWorkOrderEventResponse(event))
		}
		responses.WriteSuccess(w, out)
	}
}

type workOrderResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CustomerID         *uuid.UUID      `json:"customer_id,omitempty"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	Total              decimal.Decimal `json:"total"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreatedAt          time.Time       `json:"created_at"`
}

type workOrderEventResponse struct {
	ID           uuid.UUID       `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Method       *string         `json:"method,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Note         string          `json:"note,omitempty"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newWorkOrderEventResponse(event models.WorkOrderEvent) workOrderEventResponse {
	out := workOrderEventResponse{
		ID:           event.ID,
		Kind:         event.Kind,
		Amount:       event.Amount,
		BalanceAfter: event.BalanceAfter,
		Note:         event.Note,
		ReferenceID:  event.ReferenceID,
		CreatedAt:    event.CreatedAt,
	}
	if event.Method != nil {
		method := string(*event.Method)
		out.Method = &method
	}
	return out
}
