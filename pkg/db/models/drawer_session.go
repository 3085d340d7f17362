package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// DrawerSession is the daily cash-register record gating settlement.
// This engine only reads it; open/close flows own the writes.
type DrawerSession struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessDate time.Time          `gorm:"column:business_date;type:date;not null;index"`
	Status       enums.DrawerStatus `gorm:"column:status;type:drawer_status_enum;not null;default:'open'"`
	OpeningFloat decimal.Decimal    `gorm:"column:opening_float;type:decimal(12,2);not null"`
	OpenedAt     time.Time          `gorm:"column:opened_at;autoCreateTime"`
	ClosedAt     *time.Time         `gorm:"column:closed_at"`
}
