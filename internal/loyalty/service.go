package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox/payloads"
)

// AccrualResult describes one points accrual and any tier movement.
type AccrualResult struct {
	CustomerID    uuid.UUID
	PointsDelta   int64
	PointsAfter   int64
	LifetimeSpend decimal.Decimal
	PreviousTier  enums.LoyaltyTier
	Tier          enums.LoyaltyTier
}

// TierMoved reports whether the accrual crossed a tier threshold.
func (r AccrualResult) TierMoved() bool {
	return r.PreviousTier != r.Tier
}

// Service accrues loyalty points when a full settlement names a customer.
type Service interface {
	ApplyAccrual(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, total decimal.Decimal) (*AccrualResult, error)
}

type service struct {
	repo   Repository
	outbox outbox.Publisher
}

// NewService wires a loyalty service with its persistence and event deps.
func NewService(repo Repository, publisher outbox.Publisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: publisher}, nil
}

// ApplyAccrual adds floor(total) points to the customer, grows lifetime spend
// by the full total, and recomputes the tier from the new cumulative spend.
func (s *service) ApplyAccrual(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, total decimal.Decimal) (*AccrualResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total cannot be negative")
	}

	repo := s.repo.WithTx(tx)
	customer, err := repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}

	pointsDelta := total.IntPart()
	previousTier := customer.Tier

	customer.LoyaltyPoints += pointsDelta
	customer.LifetimeSpend = customer.LifetimeSpend.Add(total)
	customer.Tier = enums.LoyaltyTierFor(customer.LifetimeSpend)

	if err := repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	result := &AccrualResult{
		CustomerID:    customer.ID,
		PointsDelta:   pointsDelta,
		PointsAfter:   customer.LoyaltyPoints,
		LifetimeSpend: customer.LifetimeSpend,
		PreviousTier:  previousTier,
		Tier:          customer.Tier,
	}

	if result.TierMoved() && tx != nil {
		err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLoyaltyTierMoved,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Data: payloads.LoyaltyTierMovedEvent{
				CustomerID: customer.ID,
				FromTier:   previousTier,
				ToTier:     customer.Tier,
			},
			Version: 1,
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
