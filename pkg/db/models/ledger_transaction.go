package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// LedgerTransaction records an immutable money event. SaleID doubles as the
// idempotency key: a re-driven settlement must not insert a second revenue row.
type LedgerTransaction struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.LedgerTransactionType `gorm:"column:type;type:ledger_transaction_type_enum;not null;uniqueIndex:ux_ledger_transactions_sale_type,priority:2"`
	Amount      decimal.Decimal             `gorm:"column:amount;type:decimal(12,2);not null"`
	Method      enums.PaymentMethod         `gorm:"column:method;type:payment_method_enum;not null"`
	Description string                      `gorm:"column:description;not null"`
	SaleID      uuid.UUID                   `gorm:"column:sale_id;type:uuid;not null;uniqueIndex:ux_ledger_transactions_sale_type,priority:1"`
	WorkOrderID *uuid.UUID                  `gorm:"column:work_order_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
