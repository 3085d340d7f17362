package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Sale is the immutable snapshot written as step one of a settlement.
// Corrections are modeled as new compensating records, never updates.
type Sale struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DrawerSessionID uuid.UUID           `gorm:"column:drawer_session_id;type:uuid;not null"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:decimal(12,2);not null"`
	DiscountType    enums.DiscountType  `gorm:"column:discount_type;type:discount_type_enum;not null;default:'none'"`
	DiscountValue   decimal.Decimal     `gorm:"column:discount_value;type:decimal(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:decimal(12,2);not null;default:0"`
	TaxRate         decimal.Decimal     `gorm:"column:tax_rate;type:decimal(8,6);not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:decimal(12,2);not null"`
	Total           decimal.Decimal     `gorm:"column:total;type:decimal(12,2);not null"`
	AmountPaid      decimal.Decimal     `gorm:"column:amount_paid;type:decimal(12,2);not null"`
	ChangeDue       decimal.Decimal     `gorm:"column:change_due;type:decimal(12,2);not null;default:0"`
	Method          enums.PaymentMethod `gorm:"column:method;type:payment_method_enum;not null"`
	Deposit         bool                `gorm:"column:deposit;not null;default:false"`
	CustomerID      *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	WorkOrderID     *uuid.UUID          `gorm:"column:work_order_id;type:uuid"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`

	Lines []SaleLine `gorm:"foreignKey:SaleID"`
}

// SaleLine captures one cart line at the moment of settlement, including the
// pre-promotion price so receipts can show both.
type SaleLine struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID            uuid.UUID        `gorm:"column:sale_id;type:uuid;not null;index"`
	ItemID            uuid.UUID        `gorm:"column:item_id;type:uuid;not null"`
	Kind              enums.ItemKind   `gorm:"column:kind;type:item_kind_enum;not null"`
	Name              string           `gorm:"column:name;not null"`
	UnitPrice         decimal.Decimal  `gorm:"column:unit_price;type:decimal(12,2);not null"`
	OriginalUnitPrice *decimal.Decimal `gorm:"column:original_unit_price;type:decimal(12,2)"`
	Quantity          int              `gorm:"column:quantity;not null"`
	LineTotal         decimal.Decimal  `gorm:"column:line_total;type:decimal(12,2);not null"`
}
