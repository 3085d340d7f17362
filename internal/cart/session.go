package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/internal/pricing"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

// Session holds the mutable checkout cart for one terminal. It owns its lines
// exclusively and is destroyed when the checkout clears or settles.
type Session struct {
	lines    []pricing.Line
	discount pricing.Discount
}

// NewSession returns an empty cart with no discount.
func NewSession() *Session {
	return &Session{discount: pricing.NoDiscount()}
}

// AddLine appends a line or bumps the quantity of an existing one. Product
// lines with a known stock ceiling are rejected when the combined quantity
// would exceed it.
func (s *Session) AddLine(line pricing.Line) error {
	if line.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if !line.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item kind %q", line.Kind))
	}
	if line.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if line.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	for i := range s.lines {
		if s.lines[i].ItemID != line.ItemID || s.lines[i].Kind != line.Kind {
			continue
		}
		combined := s.lines[i].Quantity + line.Quantity
		if err := checkCeiling(line, combined); err != nil {
			return err
		}
		s.lines[i].Quantity = combined
		return nil
	}

	if err := checkCeiling(line, line.Quantity); err != nil {
		return err
	}
	s.lines = append(s.lines, line)
	return nil
}

func checkCeiling(line pricing.Line, quantity int) error {
	if line.Kind != enums.ItemKindProduct || line.StockCeiling == nil {
		return nil
	}
	if quantity <= *line.StockCeiling {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStockInsufficient,
		fmt.Sprintf("only %d in stock for %s", *line.StockCeiling, line.Name)).
		WithDetails(map[string]any{
			"item_id":   line.ItemID.String(),
			"requested": quantity,
			"available": *line.StockCeiling,
		})
}

// SetQuantity updates one line's quantity, subject to its stock ceiling.
func (s *Session) SetQuantity(itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	for i := range s.lines {
		if s.lines[i].ItemID != itemID {
			continue
		}
		if err := checkCeiling(s.lines[i], quantity); err != nil {
			return err
		}
		s.lines[i].Quantity = quantity
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "line not found in cart")
}

// RemoveLine drops the line for itemID if present.
func (s *Session) RemoveLine(itemID uuid.UUID) {
	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// SetDiscount replaces the active discount. Percentage must be within 0..100
// and fixed amounts must not exceed the current subtotal.
func (s *Session) SetDiscount(discount pricing.Discount) error {
	switch discount.Type {
	case enums.DiscountTypeNone:
	case enums.DiscountTypePercentage:
		if discount.Value.IsNegative() || discount.Value.GreaterThan(decimal.NewFromInt(100)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount must be between 0 and 100")
		}
	case enums.DiscountTypeFixed:
		if discount.Value.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed discount cannot be negative")
		}
		if discount.Value.GreaterThan(s.Subtotal()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed discount cannot exceed the subtotal")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", discount.Type))
	}
	s.discount = discount
	return nil
}

// Discount returns the active discount.
func (s *Session) Discount() pricing.Discount {
	return s.discount
}

// Subtotal is the undiscounted line-item sum.
func (s *Session) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range s.lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// Totals runs the pricing breakdown against the current cart state.
func (s *Session) Totals(taxRate decimal.Decimal) pricing.Totals {
	return pricing.ComputeTotals(s.lines, s.discount, taxRate)
}

// Snapshot copies the lines so settlement works on an immutable view.
func (s *Session) Snapshot() []pricing.Line {
	out := make([]pricing.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (s *Session) IsEmpty() bool {
	return len(s.lines) == 0
}

// Clear resets lines and discount, ending the checkout session.
func (s *Session) Clear() {
	s.lines = nil
	s.discount = pricing.NoDiscount()
}
