package workorder

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
)

// Repository manages persistence for work orders and their event history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error)
	UpdateBalance(ctx context.Context, order *models.WorkOrder) error
	AppendEvent(ctx context.Context, event *models.WorkOrderEvent) error
	HasEventForReference(ctx context.Context, referenceID uuid.UUID) (bool, error)
	ListEvents(ctx context.Context, workOrderID uuid.UUID) ([]models.WorkOrderEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a work-order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateBalance(ctx context.Context, order *models.WorkOrder) error {
	return r.db.WithContext(ctx).
		Model(&models.WorkOrder{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"total_paid": order.TotalPaid,
			"status":     order.Status,
		}).Error
}

func (r *repository) AppendEvent(ctx context.Context, event *models.WorkOrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) HasEventForReference(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkOrderEvent{}).
		Where("reference_id = ?", referenceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListEvents(ctx context.Context, workOrderID uuid.UUID) ([]models.WorkOrderEvent, error) {
	var events []models.WorkOrderEvent
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
