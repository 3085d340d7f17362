package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/config"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
	pkgerrors "github.com/andreshurtado/reparalo-backend/pkg/errors"
)

// State is the per-method readiness of a payment intent.
type State string

const (
	StateUnselected State = "unselected"
	StateCollecting State = "collecting"
	StateReady      State = "ready"
)

// Validator creates payment intents constrained to the methods the shop has
// enabled in configuration.
type Validator struct {
	enabled map[enums.PaymentMethod]bool
}

// NewValidator reads the enabled-method flags from checkout configuration.
func NewValidator(cfg config.CheckoutConfig) *Validator {
	return &Validator{enabled: map[enums.PaymentMethod]bool{
		enums.PaymentMethodCash:         cfg.EnableCash,
		enums.PaymentMethodCard:         cfg.EnableCard,
		enums.PaymentMethodMobileWallet: cfg.EnableMobileWallet,
		enums.PaymentMethodBankTransfer: cfg.EnableBankTransfer,
		enums.PaymentMethodCheck:        cfg.EnableCheck,
	}}
}

// EnabledMethods lists the methods an operator can pick, in canonical order.
func (v *Validator) EnabledMethods() []enums.PaymentMethod {
	ordered := []enums.PaymentMethod{
		enums.PaymentMethodCash,
		enums.PaymentMethodCard,
		enums.PaymentMethodMobileWallet,
		enums.PaymentMethodBankTransfer,
		enums.PaymentMethodCheck,
	}
	out := make([]enums.PaymentMethod, 0, len(ordered))
	for _, method := range ordered {
		if v.enabled[method] {
			out = append(out, method)
		}
	}
	return out
}

// NewIntent starts an intent in the unselected state. For deposits the amount
// due is the operator-chosen partial amount, fixed before method selection.
func (v *Validator) NewIntent(amountDue decimal.Decimal, deposit bool) (*Intent, error) {
	if !amountDue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount due must be positive")
	}
	return &Intent{
		enabled:   v.enabled,
		amountDue: amountDue,
		deposit:   deposit,
	}, nil
}

// Intent tracks the payment data collected for one settlement attempt.
// Method-specific fields are wiped on every method switch so stale data never
// crosses methods.
type Intent struct {
	enabled    map[enums.PaymentMethod]bool
	method     enums.PaymentMethod
	selected   bool
	amountDue  decimal.Decimal
	tendered   *decimal.Decimal
	payerPhone string
	payerName  string
	deposit    bool
}

// SelectMethod switches the intent to a new method, resetting all
// method-specific fields.
func (i *Intent) SelectMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	if !i.enabled[method] {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %s is not enabled", method))
	}
	i.method = method
	i.selected = true
	i.tendered = nil
	i.payerPhone = ""
	i.payerName = ""
	return nil
}

// SetTendered records the cash handed over. Only meaningful for cash.
func (i *Intent) SetTendered(amount decimal.Decimal) error {
	if !i.selected || i.method != enums.PaymentMethodCash {
		return pkgerrors.New(pkgerrors.CodeValidation, "tendered amount applies to cash payments only")
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tendered amount cannot be negative")
	}
	i.tendered = &amount
	return nil
}

// SetPayer records the wallet holder's contact data. Only meaningful for
// mobile wallet payments.
func (i *Intent) SetPayer(phone, name string) error {
	if !i.selected || i.method != enums.PaymentMethodMobileWallet {
		return pkgerrors.New(pkgerrors.CodeValidation, "payer details apply to mobile wallet payments only")
	}
	i.payerPhone = phone
	i.payerName = name
	return nil
}

// State derives readiness from the selected method and its collected fields.
func (i *Intent) State() State {
	if !i.selected {
		return StateUnselected
	}
	switch i.method {
	case enums.PaymentMethodCash:
		if i.tendered != nil && i.tendered.GreaterThanOrEqual(i.amountDue) {
			return StateReady
		}
		return StateCollecting
	case enums.PaymentMethodMobileWallet:
		if i.payerPhone != "" && i.payerName != "" {
			return StateReady
		}
		return StateCollecting
	default:
		// card, bank transfer, and check settle for exactly the amount due.
		return StateReady
	}
}

// ChangeDue is the cash to hand back; zero for every non-cash method.
func (i *Intent) ChangeDue() decimal.Decimal {
	if i.method != enums.PaymentMethodCash || i.tendered == nil {
		return decimal.Zero
	}
	change := i.tendered.Sub(i.amountDue)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// AmountPaid is the amount applied to the sale. Cash change is returned to
// the customer, so every method applies exactly the amount due.
func (i *Intent) AmountPaid() decimal.Decimal {
	return i.amountDue
}

// AmountDue returns the amount this intent collects.
func (i *Intent) AmountDue() decimal.Decimal {
	return i.amountDue
}

// Method returns the selected payment method; empty until selection.
func (i *Intent) Method() enums.PaymentMethod {
	return i.method
}

// Deposit reports whether this intent is a partial settlement.
func (i *Intent) Deposit() bool {
	return i.deposit
}

// Payer returns the collected wallet contact fields.
func (i *Intent) Payer() (phone, name string) {
	return i.payerPhone, i.payerName
}
