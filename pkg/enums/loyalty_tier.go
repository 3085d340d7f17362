package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LoyaltyTier classifies customers by cumulative lifetime spend.
type LoyaltyTier string

const (
	LoyaltyTierBronze   LoyaltyTier = "bronze"
	LoyaltyTierSilver   LoyaltyTier = "silver"
	LoyaltyTierGold     LoyaltyTier = "gold"
	LoyaltyTierPlatinum LoyaltyTier = "platinum"
)

var validLoyaltyTiers = []LoyaltyTier{
	LoyaltyTierBronze,
	LoyaltyTierSilver,
	LoyaltyTierGold,
	LoyaltyTierPlatinum,
}

var (
	silverThreshold   = decimal.NewFromInt(500)
	goldThreshold     = decimal.NewFromInt(2000)
	platinumThreshold = decimal.NewFromInt(5000)
)

// LoyaltyTierFor derives the tier from cumulative lifetime spend.
func LoyaltyTierFor(lifetimeSpend decimal.Decimal) LoyaltyTier {
	switch {
	case lifetimeSpend.GreaterThanOrEqual(platinumThreshold):
		return LoyaltyTierPlatinum
	case lifetimeSpend.GreaterThanOrEqual(goldThreshold):
		return LoyaltyTierGold
	case lifetimeSpend.GreaterThanOrEqual(silverThreshold):
		return LoyaltyTierSilver
	default:
		return LoyaltyTierBronze
	}
}

// IsValid reports whether the value matches the canonical loyalty tier enum.
func (t LoyaltyTier) IsValid() bool {
	for _, candidate := range validLoyaltyTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLoyaltyTier converts raw input into LoyaltyTier.
func ParseLoyaltyTier(value string) (LoyaltyTier, error) {
	for _, candidate := range validLoyaltyTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loyalty tier %q", value)
}
