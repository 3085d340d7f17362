package workorder

import (
	"github.com/shopspring/decimal"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
	"github.com/andreshurtado/reparalo-backend/pkg/enums"
)

// paidEpsilon absorbs sub-cent residue from settlement arithmetic.
var paidEpsilon = decimal.RequireFromString("0.01")

// Reconciliation is the balance outcome of applying one payment to an order.
type Reconciliation struct {
	TotalPaidAfter   decimal.Decimal
	BalanceAfter     decimal.Decimal
	Paid             bool
	StatusTransition *enums.WorkOrderStatus
}

// Reconcile computes the order's new paid totals and whether the payment
// closes it. A status move to ready-for-pickup is proposed only when the
// balance clears on a full (non-deposit) settlement of a non-terminal order.
// Deposits never move status, even when they zero the balance.
func Reconcile(order *models.WorkOrder, amountPaid decimal.Decimal, deposit bool) Reconciliation {
	totalPaidAfter := order.TotalPaid.Add(amountPaid)

	balanceAfter := order.Total.Sub(totalPaidAfter)
	if balanceAfter.IsNegative() {
		balanceAfter = decimal.Zero
	}

	paid := balanceAfter.LessThanOrEqual(paidEpsilon)

	result := Reconciliation{
		TotalPaidAfter: totalPaidAfter,
		BalanceAfter:   balanceAfter,
		Paid:           paid,
	}
	if paid && !deposit && !order.Status.IsTerminal() {
		transition := enums.WorkOrderStatusReadyForPickup
		result.StatusTransition = &transition
	}
	return result
}
