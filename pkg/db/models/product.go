package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked catalog item sold over the counter.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU       string          `gorm:"column:sku;uniqueIndex;not null"`
	Name      string          `gorm:"column:name;not null"`
	ListPrice decimal.Decimal `gorm:"column:list_price;type:decimal(12,2);not null"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	Active    bool            `gorm:"column:active;not null;default:true"`

	// Catalog-level promotion, resolved into a unit price at quote time.
	PromoPercent   *decimal.Decimal `gorm:"column:promo_percent;type:decimal(5,2)"`
	PromoLabel     *string          `gorm:"column:promo_label"`
	PromoExpiresAt *time.Time       `gorm:"column:promo_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
