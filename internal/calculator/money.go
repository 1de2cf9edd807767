package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SettleEpsilon is the balance below which a member counts as settled.
var SettleEpsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// RoundCents rounds an amount to two decimal places (half away from zero).
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsWholeCents reports whether d has no digits below the cent.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(RoundCents(d))
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// uniqueSorted returns the distinct non-empty ids in ascending order.
func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
