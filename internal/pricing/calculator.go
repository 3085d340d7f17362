package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// Line is one cart entry with its catalog price already resolved. When a
// promotion lowered the unit price, OriginalUnitPrice keeps the list price so
// receipts can show both.
type Line struct {
	ItemID            uuid.UUID
	Kind              enums.ItemKind
	Name              string
	UnitPrice         decimal.Decimal
	OriginalUnitPrice *decimal.Decimal
	Quantity          int

	// StockCeiling caps the quantity for product lines. Nil means unknown
	// or not stock-tracked.
	StockCeiling *int
}

// Discount is the single cart-level discount. Value holds the percentage for
// percentage discounts and the absolute amount for fixed ones.
type Discount struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// NoDiscount is the zero-value discount applied to fresh carts.
func NoDiscount() Discount {
	return Discount{Type: enums.DiscountTypeNone}
}

// Totals is the full pricing breakdown. Values are unrounded; callers round
// only at the display boundary so repeated recomputation never compounds
// rounding error.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals derives the pricing breakdown from lines, discount, and a
// fractional tax rate (0.115 for 11.5%). Pure function of its inputs.
func ComputeTotals(lines []Line, discount Discount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discountAmount := discountAmountFor(discount, subtotal)

	taxable := subtotal.Sub(discountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	taxAmount := taxable.Mul(taxRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		TaxAmount:      taxAmount,
		Total:          taxable.Add(taxAmount),
	}
}

func discountAmountFor(discount Discount, subtotal decimal.Decimal) decimal.Decimal {
	switch discount.Type {
	case enums.DiscountTypePercentage:
		return subtotal.Mul(discount.Value).Div(decimal.NewFromInt(100))
	case enums.DiscountTypeFixed:
		if discount.Value.GreaterThan(subtotal) {
			return subtotal
		}
		if discount.Value.IsNegative() {
			return decimal.Zero
		}
		return discount.Value
	default:
		return decimal.Zero
	}
}

// Rounded returns the two-decimal receipt view of the totals.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		TaxableAmount:  t.TaxableAmount.Round(2),
		TaxAmount:      t.TaxAmount.Round(2),
		Total:          t.Total.Round(2),
	}
}
