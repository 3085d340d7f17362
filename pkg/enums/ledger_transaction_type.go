package enums

import "fmt"

// LedgerTransactionType maps to the ledger_transaction_type_enum enum in Postgres.
type LedgerTransactionType string

const (
	LedgerTransactionTypeRevenue    LedgerTransactionType = "revenue"
	LedgerTransactionTypeExpense    LedgerTransactionType = "expense"
	LedgerTransactionTypeAdjustment LedgerTransactionType = "adjustment"
)

var validLedgerTransactionTypes = []LedgerTransactionType{
	LedgerTransactionTypeRevenue,
	LedgerTransactionTypeExpense,
	LedgerTransactionTypeAdjustment,
}

// IsValid reports whether the value matches the canonical ledger transaction enum.
func (t LedgerTransactionType) IsValid() bool {
	for _, candidate := range validLedgerTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerTransactionType converts raw input into LedgerTransactionType.
func ParseLedgerTransactionType(value string) (LedgerTransactionType, error) {
	for _, candidate := range validLedgerTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger transaction type %q", value)
}
