package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/internal/pricing"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

func productLine(name string, price string, qty int, ceiling *int) pricing.Line {
	return pricing.Line{
		ItemID:       uuid.New(),
		Kind:         enums.ItemKindProduct,
		Name:         name,
		UnitPrice:    decimal.RequireFromString(price),
		Quantity:     qty,
		StockCeiling: ceiling,
	}
}

func intPtr(v int) *int { return &v }

func TestSession_AddLineRespectsStockCeiling(t *testing.T) {
	s := NewSession()
	line := productLine("screen protector", "9.99", 3, intPtr(3))
	if err := s.AddLine(line); err != nil {
		t.Fatalf("AddLine error: %v", err)
	}

	line.Quantity = 1
	err := s.AddLine(line)
	if err == nil {
		t.Fatal("expected stock ceiling rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStockInsufficient {
		t.Fatalf("expected STOCK_INSUFFICIENT, got %v", err)
	}
	if !s.Subtotal().Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("rejected add mutated the cart: subtotal %s", s.Subtotal())
	}
}

func TestSession_AddLineMergesSameItem(t *testing.T) {
	s := NewSession()
	line := productLine("battery", "25.00", 1, nil)
	if err := s.AddLine(line); err != nil {
		t.Fatalf("AddLine error: %v", err)
	}
	line.Quantity = 2
	if err := s.AddLine(line); err != nil {
		t.Fatalf("AddLine merge error: %v", err)
	}

	snapshot := s.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(snapshot))
	}
	if snapshot[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", snapshot[0].Quantity)
	}
}

func TestSession_ServiceLinesIgnoreStock(t *testing.T) {
	s := NewSession()
	line := pricing.Line{
		ItemID:    uuid.New(),
		Kind:      enums.ItemKindService,
		Name:      "screen replacement labor",
		UnitPrice: decimal.RequireFromString("45.00"),
		Quantity:  2,
	}
	if err := s.AddLine(line); err != nil {
		t.Fatalf("service line rejected: %v", err)
	}
}

func TestSession_SetDiscountBounds(t *testing.T) {
	s := NewSession()
	if err := s.AddLine(productLine("cable", "10.00", 2, nil)); err != nil {
		t.Fatalf("AddLine error: %v", err)
	}

	over := pricing.Discount{Type: enums.DiscountTypePercentage, Value: decimal.RequireFromString("120")}
	if err := s.SetDiscount(over); err == nil {
		t.Fatal("expected rejection of percentage > 100")
	}

	tooBig := pricing.Discount{Type: enums.DiscountTypeFixed, Value: decimal.RequireFromString("25.00")}
	if err := s.SetDiscount(tooBig); err == nil {
		t.Fatal("expected rejection of fixed discount above subtotal")
	}

	ok := pricing.Discount{Type: enums.DiscountTypeFixed, Value: decimal.RequireFromString("5.00")}
	if err := s.SetDiscount(ok); err != nil {
		t.Fatalf("valid discount rejected: %v", err)
	}
	if !s.Discount().Value.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("discount not stored: %+v", s.Discount())
	}
}

func TestSession_SetQuantityAndRemove(t *testing.T) {
	s := NewSession()
	line := productLine("charger", "15.00", 1, intPtr(5))
	if err := s.AddLine(line); err != nil {
		t.Fatalf("AddLine error: %v", err)
	}

	if err := s.SetQuantity(line.ItemID, 6); err == nil {
		t.Fatal("expected quantity above ceiling to be rejected")
	}
	if err := s.SetQuantity(line.ItemID, 4); err != nil {
		t.Fatalf("SetQuantity error: %v", err)
	}
	if !s.Subtotal().Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("subtotal = %s, want 60.00", s.Subtotal())
	}

	s.RemoveLine(line.ItemID)
	if !s.IsEmpty() {
		t.Fatal("cart should be empty after removing the only line")
	}
}

func TestSession_ClearResetsDiscount(t *testing.T) {
	s := NewSession()
	if err := s.AddLine(productLine("case", "12.00", 1, nil)); err != nil {
		t.Fatalf("AddLine error: %v", err)
	}
	if err := s.SetDiscount(pricing.Discount{Type: enums.DiscountTypePercentage, Value: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("SetDiscount error: %v", err)
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Fatal("cart should be empty after Clear")
	}
	if s.Discount().Type != enums.DiscountTypeNone {
		t.Fatalf("discount survived Clear: %+v", s.Discount())
	}
}
