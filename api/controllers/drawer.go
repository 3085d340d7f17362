package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/api/responses"
	"github.com/andreshurtado/reparalo-backend/api/validators"
	"github.com/andreshurtado/reparalo-backend/internal/drawer"
	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
)

// DrawerToday returns today's open drawer session, or null when none is open.
func DrawerToday(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drawer service unavailable"))
			return
		}

		session, err := svc.GetOpenSessionForToday(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if session == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, newDrawerSessionResponse(session))
	}
}

// DrawerOpen starts today's cash session with the counted opening float.
func DrawerOpen(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drawer service unavailable"))
			return
		}

		var payload drawerOpenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.OpenSession(r.Context(), payload.OpeningFloat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDrawerSessionResponse(session))
	}
}

// DrawerClose ends the identified drawer session.
func DrawerClose(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drawer service unavailable"))
			return
		}

		id, err := parseIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CloseSession(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

type drawerOpenRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

type drawerSessionResponse struct {
	ID           uuid.UUID       `json:"id"`
	BusinessDate string          `json:"business_date"`
	Status       string          `json:"status"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	OpenedAt     time.Time       `json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
}

func newDrawerSessionResponse(session *models.DrawerSession) drawerSessionResponse {
	return drawerSessionResponse{
		ID:           session.ID,
		BusinessDate: session.BusinessDate.Format("2006-01-02"),
		Status:       string(session.Status),
		OpeningFloat: session.OpeningFloat,
		OpenedAt:     session.OpenedAt,
		ClosedAt:     session.ClosedAt,
	}
}
