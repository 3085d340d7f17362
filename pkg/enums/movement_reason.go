package enums

import "fmt"

// MovementReason maps to the movement_reason_enum enum in Postgres.
type MovementReason string

const (
	MovementReasonSale       MovementReason = "sale"
	MovementReasonRestock    MovementReason = "restock"
	MovementReasonAdjustment MovementReason = "adjustment"
)

var validMovementReasons = []MovementReason{
	MovementReasonSale,
	MovementReasonRestock,
	MovementReasonAdjustment,
}

// IsValid reports whether the value matches the canonical movement reason enum.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
