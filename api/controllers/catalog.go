package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/api/responses"
	"github.com/andreshurtado/reparalo-backend/internal/catalog"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/logger"
)

// CatalogProducts lists active products with their promo-resolved unit price.
func CatalogProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListActiveProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		out := make([]productResponse, 0, len(products))
		for i := range products {
			product := &products[i]
			resolved := svc.ResolveUnitPrice(product, now)
			out = append(out, productResponse{
				ID:            product.ID,
				SKU:           product.SKU,
				Name:          product.Name,
				UnitPrice:     resolved.UnitPrice,
				OriginalPrice: resolved.Original,
				PromoLabel:    resolved.PromoLabel,
				Stock:         product.Stock,
			})
		}

		responses.WriteSuccess(w, out)
	}
}

// CatalogServices lists active service offerings.
func CatalogServices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		offerings, err := svc.ListActiveServices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]serviceResponse, 0, len(offerings))
		for _, offering := range offerings {
			out = append(out, serviceResponse{
				ID:    offering.ID,
				Name:  offering.Name,
				Price: offering.Price,
			})
		}

		responses.WriteSuccess(w, out)
	}
}

type productResponse struct {
	ID            uuid.UUID        `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	PromoLabel    string           `json:"promo_label,omitempty"`
	Stock         int              `json:"stock"`
}

type serviceResponse struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
