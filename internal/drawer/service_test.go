package drawer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeRepository struct {
	openSession *models.DrawerSession
	byID        *models.DrawerSession
	created     *models.DrawerSession
	closedID    uuid.UUID
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, session *models.DrawerSession) error {
	session.ID = uuid.New()
	f.created = session
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DrawerSession, error) {
	if f.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.byID, nil
}

func (f *fakeRepository) FindOpenByDate(ctx context.Context, businessDate time.Time) (*models.DrawerSession, error) {
	return f.openSession, nil
}

func (f *fakeRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	f.closedID = id
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

func TestService_AssertSettleableBlocksWhenClosed(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(fakeTxRunner{}, repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.AssertSettleable(context.Background())
	if err == nil {
		t.Fatal("expected gate failure with no open session")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDrawerClosed {
		t.Fatalf("expected DRAWER_CLOSED, got %v", err)
	}
}

func TestService_AssertSettleablePassesWhenOpen(t *testing.T) {
	open := &models.DrawerSession{ID: uuid.New(), Status: enums.DrawerStatusOpen}
	repo := &fakeRepository{openSession: open}
	svc, err := NewService(fakeTxRunner{}, repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.AssertSettleable(context.Background())
	if err != nil {
		t.Fatalf("AssertSettleable error: %v", err)
	}
	if got.ID != open.ID {
		t.Fatalf("unexpected session returned: %v", got.ID)
	}
}

func TestService_OpenSessionEmitsEvent(t *testing.T) {
	repo := &fakeRepository{}
	publisher := &fakePublisher{}
	svc, err := NewService(fakeTxRunner{}, repo, publisher)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	session, err := svc.OpenSession(context.Background(), decimal.RequireFromString("150.00"))
	if err != nil {
		t.Fatalf("OpenSession error: %v", err)
	}
	if repo.created == nil || repo.created.Status != enums.DrawerStatusOpen {
		t.Fatalf("session not persisted as open: %+v", repo.created)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDrawerOpened {
		t.Fatalf("expected one drawer_opened event, got %+v", publisher.events)
	}
	if publisher.events[0].AggregateID != session.ID {
		t.Fatal("event aggregate should be the new session")
	}
}

func TestService_OpenSessionRejectsSecondOpen(t *testing.T) {
	repo := &fakeRepository{openSession: &models.DrawerSession{ID: uuid.New()}}
	svc, err := NewService(fakeTxRunner{}, repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.OpenSession(context.Background(), decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected conflict for second open session")
	}
}

func TestService_OpenSessionRejectsNegativeFloat(t *testing.T) {
	svc, err := NewService(fakeTxRunner{}, &fakeRepository{}, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	if _, err := svc.OpenSession(context.Background(), decimal.RequireFromString("-1")); err == nil {
		t.Fatal("expected validation failure for negative float")
	}
}

func TestService_CloseSessionAlreadyClosed(t *testing.T) {
	closed := &models.DrawerSession{ID: uuid.New(), Status: enums.DrawerStatusClosed}
	repo := &fakeRepository{byID: closed}
	svc, err := NewService(fakeTxRunner{}, repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	err = svc.CloseSession(context.Background(), closed.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestService_CloseSessionUnknownID(t *testing.T) {
	svc, err := NewService(fakeTxRunner{}, &fakeRepository{}, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	err = svc.CloseSession(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestService_CloseSession(t *testing.T) {
	open := &models.DrawerSession{ID: uuid.New(), Status: enums.DrawerStatusOpen}
	repo := &fakeRepository{byID: open}
	svc, err := NewService(fakeTxRunner{}, repo, &fakePublisher{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if err := svc.CloseSession(context.Background(), open.ID); err != nil {
		t.Fatalf("CloseSession error: %v", err)
	}
	if repo.closedID != open.ID {
		t.Fatalf("close not issued for session: %v", repo.closedID)
	}
}
