package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// State is a member's settlement state within a group.
type State string

const (
	StateUnsettled State = "UNSETTLED"
	StateSettled   State = "SETTLED"
)

// StateOf maps the stored paid flag to a settlement state.
func StateOf(isPaid bool) State {
	if isPaid {
		return StateSettled
	}
	return StateUnsettled
}

// InitialState is the state a member starts in for a given balance.
func InitialState(amountOwed decimal.Decimal) State {
	return StateOf(IsSettledAmount(amountOwed))
}

// Outstanding is what still counts toward the group's remaining total.
// A paid member contributes nothing, but their amountOwed is left untouched so
// clearing the flag re-exposes it.
func Outstanding(amountOwed decimal.Decimal, isPaid bool) decimal.Decimal {
	if isPaid {
		return decimal.Zero
	}
	return amountOwed
}

// IsSettledAmount reports whether a balance is within a cent of nothing (or a credit).
func IsSettledAmount(amountOwed decimal.Decimal) bool {
	return amountOwed.LessThan(SettleEpsilon)
}

// AutoSettle returns the paid flag after applying the zero-balance policy.
// It only ever turns the flag on; reopening a balance is an explicit action.
func AutoSettle(amountOwed decimal.Decimal, isPaid bool) bool {
	return isPaid || IsSettledAmount(amountOwed)
}

// ApplyPayment lowers amountOwed by the payment. Overpayment leaves a negative
// balance (a credit); nothing is clamped.
func ApplyPayment(amountOwed, payment decimal.Decimal) (decimal.Decimal, error) {
	if !payment.IsPositive() {
		return amountOwed, fmt.Errorf("%w: payment %s", ErrNegativeAmount, payment)
	}
	return amountOwed.Sub(payment), nil
}
