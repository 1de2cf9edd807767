package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is one suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

type position struct {
	userID string
	amount decimal.Decimal // always positive
}

// PlanTransfers turns net positions into a short list of transfers that settles
// everyone. Positive net means the user is owed money, negative means they owe.
//
// Algorithm:
//   - split users into creditors and debtors, largest first (ties by user id)
//   - greedy: match the current debtor with the current creditor for the smaller
//     of the two amounts, then move past whichever side is settled
//   - amounts under a cent are dropped
func PlanTransfers(net map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []position
	for _, id := range sortedKeys(net) {
		bal := RoundCents(net[id])
		switch {
		case bal.GreaterThanOrEqual(SettleEpsilon):
			creditors = append(creditors, position{userID: id, amount: bal})
		case bal.Neg().GreaterThanOrEqual(SettleEpsilon):
			debtors = append(debtors, position{userID: id, amount: bal.Neg()})
		}
	}
	byAmount := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if c := p[i].amount.Cmp(p[j].amount); c != 0 {
				return c > 0
			}
			return p[i].userID < p[j].userID
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	// Match debtors with creditors to minimize transactions
	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.GreaterThanOrEqual(SettleEpsilon) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].userID,
				To:     creditors[j].userID,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount.LessThan(SettleEpsilon) {
			i++
		}
		if creditors[j].amount.LessThan(SettleEpsilon) {
			j++
		}
	}
	return transfers
}
