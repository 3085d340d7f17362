package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// DataChangedEvent tells cached views to refetch. Consumers must also poll,
// delivery is best effort.
type DataChangedEvent struct {
	Scopes []string `json:"scopes"`
}

// SaleCompletedEvent carries the minimal fields dashboards care about.
type SaleCompletedEvent struct {
	SaleID uuid.UUID           `json:"sale_id"`
	Amount decimal.Decimal     `json:"amount"`
	Method enums.PaymentMethod `json:"method"`
}

// WorkOrderSettledEvent is emitted when a settlement touches an order balance.
type WorkOrderSettledEvent struct {
	WorkOrderID  uuid.UUID             `json:"work_order_id"`
	SaleID       uuid.UUID             `json:"sale_id"`
	AmountPaid   decimal.Decimal       `json:"amount_paid"`
	BalanceAfter decimal.Decimal       `json:"balance_after"`
	Status       enums.WorkOrderStatus `json:"status"`
	Deposit      bool                  `json:"deposit"`
}

// DrawerOpenedEvent announces a fresh cash session.
type DrawerOpenedEvent struct {
	DrawerSessionID uuid.UUID       `json:"drawer_session_id"`
	BusinessDate    string          `json:"business_date"`
	OpeningFloat    decimal.Decimal `json:"opening_float"`
}

// LoyaltyTierMovedEvent fires when accrual crosses a tier threshold.
type LoyaltyTierMovedEvent struct {
	CustomerID uuid.UUID         `json:"customer_id"`
	FromTier   enums.LoyaltyTier `json:"from_tier"`
	ToTier     enums.LoyaltyTier `json:"to_tier"`
}

// StockLevelChangedEvent reports an inventory decrement from a sale.
type StockLevelChangedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	NewStock  int       `json:"new_stock"`
	SaleID    uuid.UUID `json:"sale_id"`
}
