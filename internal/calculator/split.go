package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Assignment is one member's stored share of an item.
type Assignment struct {
	UserID string
	Amount decimal.Decimal
}

// SplitEqually divides amount equally among the split set.
//
// The division happens in whole cents. Residual cents go one each to the members
// in ascending user-id order, so the shares always add back up to the amount:
// $10.00 among three is 3.34, 3.33, 3.33. Amounts with digits below the cent
// are rejected with ErrSubCentAmount.
func SplitEqually(amount decimal.Decimal, splitSet []string) (map[string]decimal.Decimal, error) {
	ids := uniqueSorted(splitSet)
	if len(ids) == 0 {
		return nil, ErrInvalidSplit
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: item amount %s", ErrNegativeAmount, amount)
	}
	if !IsWholeCents(amount) {
		return nil, fmt.Errorf("%w: item amount %s", ErrSubCentAmount, amount)
	}

	cents := toCents(amount)
	n := int64(len(ids))
	base, residual := cents/n, cents%n

	shares := make(map[string]decimal.Decimal, len(ids))
	for i, id := range ids {
		c := base
		if int64(i) < residual {
			c++
		}
		shares[id] = fromCents(c)
	}
	return shares, nil
}

// SplitItem returns the assignments to store for an item, ordered by user id.
func SplitItem(amount decimal.Decimal, splitSet []string) ([]Assignment, error) {
	shares, err := SplitEqually(amount, splitSet)
	if err != nil {
		return nil, err
	}
	assignments := make([]Assignment, 0, len(shares))
	for _, id := range sortedKeys(shares) {
		assignments = append(assignments, Assignment{UserID: id, Amount: shares[id]})
	}
	return assignments, nil
}
