package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Customer carries the loyalty ledger alongside contact data.
type Customer struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string            `gorm:"column:name;not null"`
	Phone         *string           `gorm:"column:phone"`
	LoyaltyPoints int64             `gorm:"column:loyalty_points;not null;default:0"`
	LifetimeSpend decimal.Decimal   `gorm:"column:lifetime_spend;type:decimal(14,2);not null;default:0"`
	Tier          enums.LoyaltyTier `gorm:"column:tier;type:loyalty_tier_enum;not null;default:'bronze'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
