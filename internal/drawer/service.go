package drawer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox"
	"github.com/andreshurtado/reparalo-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the drawer session lifecycle and the settlement gate.
type Service interface {
	GetOpenSessionForToday(ctx context.Context) (*models.DrawerSession, error)
	OpenSession(ctx context.Context, openingFloat decimal.Decimal) (*models.DrawerSession, error)
	CloseSession(ctx context.Context, id uuid.UUID) error
	AssertSettleable(ctx context.Context) (*models.DrawerSession, error)
}

type service struct {
	tx     txRunner
	repo   Repository
	outbox outbox.Publisher
	now    func() time.Time
}

// NewService wires a drawer service with its persistence and event deps.
func NewService(tx txRunner, repo Repository, publisher outbox.Publisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("drawer repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, repo: repo, outbox: publisher, now: time.Now}, nil
}

func (s *service) GetOpenSessionForToday(ctx context.Context) (*models.DrawerSession, error) {
	return s.repo.FindOpenByDate(ctx, s.today())
}

func (s *service) OpenSession(ctx context.Context, openingFloat decimal.Decimal) (*models.DrawerSession, error) {
	if openingFloat.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening float cannot be negative")
	}
	existing, err := s.repo.FindOpenByDate(ctx, s.today())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a drawer session is already open for today")
	}

	session := &models.DrawerSession{
		BusinessDate: s.today(),
		Status:       enums.DrawerStatusOpen,
		OpeningFloat: openingFloat,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, session); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDrawerOpened,
			AggregateType: enums.AggregateDrawer,
			AggregateID:   session.ID,
			Data: payloads.DrawerOpenedEvent{
				DrawerSessionID: session.ID,
				BusinessDate:    session.BusinessDate.Format("2006-01-02"),
				OpeningFloat:    openingFloat,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) CloseSession(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "drawer session not found")
		}
		return err
	}
	if session.Status == enums.DrawerStatusClosed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "drawer session already closed")
	}
	return s.repo.Close(ctx, id, s.now())
}

// AssertSettleable is the gate in front of settlement. Evaluated on checkout
// entry for an early warning and again right before the first durable write.
func (s *service) AssertSettleable(ctx context.Context) (*models.DrawerSession, error) {
	session, err := s.repo.FindOpenByDate(ctx, s.today())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDrawerClosed, "no open drawer session for today")
	}
	return session, nil
}

func (s *service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
