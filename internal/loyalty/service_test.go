package loyalty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
)

type fakeRepository struct {
	customer *models.Customer
	updated  *models.Customer
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if f.customer == nil || f.customer.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.customer
	return &copied, nil
}

func (f *fakeRepository) Update(ctx context.Context, customer *models.Customer) error {
	f.updated = customer
	return nil
}

type fakePublisher struct {
	events []outbox.DomainEvent
}

func (f *fakePublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return f.Emit(ctx, tx, event)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestService_ApplyAccrualFloorsPoints(t *testing.T) {
	customer := &models.Customer{
		ID:            uuid.New(),
		LoyaltyPoints: 10,
		LifetimeSpend: dec("100.00"),
		Tier:          enums.LoyaltyTierBronze,
	}
	repo := &fakeRepository{customer: customer}
	svc, err := NewService(repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.ApplyAccrual(context.Background(), &gorm.DB{}, customer.ID, dec("89.20"))
	if err != nil {
		t.Fatalf("ApplyAccrual error: %v", err)
	}
	if got.PointsDelta != 89 {
		t.Fatalf("points delta = %d, want 89", got.PointsDelta)
	}
	if got.PointsAfter != 99 {
		t.Fatalf("points after = %d, want 99", got.PointsAfter)
	}
	if !got.LifetimeSpend.Equal(dec("189.20")) {
		t.Fatalf("lifetime spend = %s, want 189.20", got.LifetimeSpend)
	}
	if got.Tier != enums.LoyaltyTierBronze {
		t.Fatalf("tier = %s, want bronze", got.Tier)
	}
	if repo.updated == nil {
		t.Fatal("customer update not persisted")
	}
}

func TestService_ApplyAccrualCrossesTier(t *testing.T) {
	customer := &models.Customer{
		ID:            uuid.New(),
		LifetimeSpend: dec("450.00"),
		Tier:          enums.LoyaltyTierBronze,
	}
	repo := &fakeRepository{customer: customer}
	publisher := &fakePublisher{}
	svc, err := NewService(repo, publisher)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.ApplyAccrual(context.Background(), &gorm.DB{}, customer.ID, dec("75.00"))
	if err != nil {
		t.Fatalf("ApplyAccrual error: %v", err)
	}
	if got.Tier != enums.LoyaltyTierSilver {
		t.Fatalf("tier = %s, want silver", got.Tier)
	}
	if !got.TierMoved() {
		t.Fatal("tier move not reported")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventLoyaltyTierMoved {
		t.Fatalf("expected one tier-moved event, got %+v", publisher.events)
	}
}

func TestService_ApplyAccrualNoEventWithoutTierMove(t *testing.T) {
	customer := &models.Customer{
		ID:            uuid.New(),
		LifetimeSpend: dec("600.00"),
		Tier:          enums.LoyaltyTierSilver,
	}
	publisher := &fakePublisher{}
	svc, err := NewService(&fakeRepository{customer: customer}, publisher)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.ApplyAccrual(context.Background(), &gorm.DB{}, customer.ID, dec("20.00")); err != nil {
		t.Fatalf("ApplyAccrual error: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("no event expected, got %+v", publisher.events)
	}
}

func TestService_ApplyAccrualValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.ApplyAccrual(context.Background(), nil, uuid.Nil, dec("10")); err == nil {
		t.Fatal("expected rejection of nil customer id")
	}
	if _, err := svc.ApplyAccrual(context.Background(), nil, uuid.New(), dec("-1")); err == nil {
		t.Fatal("expected rejection of negative total")
	}
}

func TestService_ApplyAccrualUnknownCustomer(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.ApplyAccrual(context.Background(), &gorm.DB{}, uuid.New(), dec("10.00"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestLoyaltyTierThresholds(t *testing.T) {
	cases := []struct {
		spend string
		want  enums.LoyaltyTier
	}{
		{"0", enums.LoyaltyTierBronze},
		{"499.99", enums.LoyaltyTierBronze},
		{"500", enums.LoyaltyTierSilver},
		{"1999.99", enums.LoyaltyTierSilver},
		{"2000", enums.LoyaltyTierGold},
		{"4999.99", enums.LoyaltyTierGold},
		{"5000", enums.LoyaltyTierPlatinum},
	}
	for _, tc := range cases {
		if got := enums.LoyaltyTierFor(dec(tc.spend)); got != tc.want {
			t.Fatalf("tier for %s = %s, want %s", tc.spend, got, tc.want)
		}
	}
}
