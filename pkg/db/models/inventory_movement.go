package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// InventoryMovement is the audit trail for stock changes. The (product, reference)
// pair is unique so a re-driven settlement skips lines it already decremented.
type InventoryMovement struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_inventory_movements_product_ref,priority:1"`
	PreviousStock int                  `gorm:"column:previous_stock;not null"`
	NewStock      int                  `gorm:"column:new_stock;not null"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	Reason        enums.MovementReason `gorm:"column:reason;type:movement_reason_enum;not null"`
	ReferenceID   uuid.UUID            `gorm:"column:reference_id;type:uuid;not null;uniqueIndex:ux_inventory_movements_product_ref,priority:2"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
