package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// WorkOrder is the repair ticket this engine reconciles balances against.
// Most of its lifecycle is owned elsewhere; settlement only touches the
// paid totals and the ready-for-pickup transition.
type WorkOrder struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  *uuid.UUID            `gorm:"column:customer_id;type:uuid"`
	Description string                `gorm:"column:description;not null"`
	Status      enums.WorkOrderStatus `gorm:"column:status;type:work_order_status_enum;not null;default:'received'"`
	Total       decimal.Decimal       `gorm:"column:total;type:decimal(12,2);not null"`
	TotalPaid   decimal.Decimal       `gorm:"column:total_paid;type:decimal(12,2);not null;default:0"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// WorkOrderEvent is an append-only history entry on a work order. Payment
// events carry the settling sale as ReferenceID for idempotent re-drives.
type WorkOrderEvent struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkOrderID  uuid.UUID            `gorm:"column:work_order_id;type:uuid;not null;index"`
	Kind         string               `gorm:"column:kind;not null"`
	Amount       decimal.Decimal      `gorm:"column:amount;type:decimal(12,2);not null"`
	Method       *enums.PaymentMethod `gorm:"column:method;type:payment_method_enum"`
	BalanceAfter decimal.Decimal      `gorm:"column:balance_after;type:decimal(12,2);not null"`
	Note         string               `gorm:"column:note"`
	ReferenceID  *uuid.UUID           `gorm:"column:reference_id;type:uuid;uniqueIndex:ux_work_order_events_reference"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
}
