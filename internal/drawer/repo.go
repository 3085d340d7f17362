package drawer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Repository manages persistence for drawer sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.DrawerSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DrawerSession, error)
	FindOpenByDate(ctx context.Context, businessDate time.Time) (*models.DrawerSession, error)
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a drawer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.DrawerSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DrawerSession, error) {
	var session models.DrawerSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindOpenByDate(ctx context.Context, businessDate time.Time) (*models.DrawerSession, error) {
	var session models.DrawerSession
	err := r.db.WithContext(ctx).
		Where("business_date = ? AND status = ?", businessDate.Format("2006-01-02"), enums.DrawerStatusOpen).
		Order("opened_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.DrawerSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    enums.DrawerStatusClosed,
			"closed_at": closedAt,
		}).Error
}
