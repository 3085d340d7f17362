package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

// ResolvedPrice is a product's sell price after catalog promotions. Original
// keeps the list price whenever a promotion applied, so receipts show both.
type ResolvedPrice struct {
	UnitPrice  decimal.Decimal
	Original   *decimal.Decimal
	PromoLabel string
}

// Service exposes catalog reads used by checkout.
type Service interface {
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListActiveServices(ctx context.Context) ([]models.ServiceOffering, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error)
	ResolveUnitPrice(product *models.Product, at time.Time) ResolvedPrice
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListActiveProducts(ctx)
}

func (s *service) ListActiveServices(ctx context.Context) ([]models.ServiceOffering, error) {
	return s.repo.ListActiveServices(ctx)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error) {
	offering, err := s.repo.FindServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, err
	}
	return offering, nil
}

// ResolveUnitPrice applies an unexpired percentage promotion to the list
// price. Expired or absent promotions sell at list.
func (s *service) ResolveUnitPrice(product *models.Product, at time.Time) ResolvedPrice {
	if product.PromoPercent == nil || product.PromoPercent.IsZero() {
		return ResolvedPrice{UnitPrice: product.ListPrice}
	}
	if product.PromoExpiresAt != nil && !at.Before(*product.PromoExpiresAt) {
		return ResolvedPrice{UnitPrice: product.ListPrice}
	}

	factor := decimal.NewFromInt(100).Sub(*product.PromoPercent).Div(decimal.NewFromInt(100))
	original := product.ListPrice
	resolved := ResolvedPrice{
		UnitPrice: product.ListPrice.Mul(factor).Round(2),
		Original:  &original,
	}
	if product.PromoLabel != nil {
		resolved.PromoLabel = *product.PromoLabel
	}
	return resolved
}
