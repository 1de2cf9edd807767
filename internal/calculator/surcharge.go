package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Rates are a group's surcharge percentages. Zero values mean no surcharge.
type Rates struct {
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
}

// Validate rejects negative percentages.
func (r Rates) Validate() error {
	if r.Tax.IsNegative() {
		return fmt.Errorf("%w: tax %s%%", ErrInvalidRate, r.Tax)
	}
	if r.ServiceCharge.IsNegative() {
		return fmt.Errorf("%w: service charge %s%%", ErrInvalidRate, r.ServiceCharge)
	}
	return nil
}

// Fraction is the combined rate as a multiplier: 10% tax + 15% service is 0.25.
func (r Rates) Fraction() decimal.Decimal {
	return r.Tax.Add(r.ServiceCharge).Div(hundred)
}

// SurchargeAllocation is the outcome of distributing a group's surcharge.
type SurchargeAllocation struct {
	// Total is subtotal × combined rate, in cents.
	Total decimal.Decimal
	// PerMember holds each listed member's slice of Total.
	PerMember map[string]decimal.Decimal
	// Unallocated is the slice belonging to the part of the subtotal no listed
	// member holds (the owner's own share, shares of departed members).
	Unallocated decimal.Decimal
}

// AllocateSurcharge spreads subtotal × (tax + service)/100 over members in
// proportion to their share of the subtotal:
//
//	member_extra[m] = extra_total × share[m] / subtotal
//
// A zero subtotal allocates nothing. Allocation is done in cents with the
// largest-remainder method so PerMember and Unallocated add up to Total exactly.
func AllocateSurcharge(subtotal decimal.Decimal, rates Rates, shares map[string]decimal.Decimal) (*SurchargeAllocation, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	alloc := &SurchargeAllocation{
		Total:       decimal.Zero,
		PerMember:   make(map[string]decimal.Decimal, len(shares)),
		Unallocated: decimal.Zero,
	}
	for id := range shares {
		alloc.PerMember[id] = decimal.Zero
	}
	if !subtotal.IsPositive() {
		return alloc, nil
	}

	alloc.Total = RoundCents(subtotal.Mul(rates.Fraction()))
	totalCents := toCents(alloc.Total)
	if totalCents == 0 {
		return alloc, nil
	}

	// Buckets in user-id order; the unlisted remainder of the subtotal goes last.
	buckets := make([]bucket, 0, len(shares)+1)
	covered := decimal.Zero
	for _, id := range sortedKeys(shares) {
		share := shares[id]
		if share.IsNegative() {
			return nil, fmt.Errorf("%w: share of %s is %s", ErrNegativeAmount, id, share)
		}
		covered = covered.Add(share)
		buckets = append(buckets, bucket{id: id, weight: share})
	}
	denominator := covered
	if rest := subtotal.Sub(covered); rest.IsPositive() {
		buckets = append(buckets, bucket{weight: rest, unlisted: true})
		denominator = subtotal
	}
	if !denominator.IsPositive() {
		return alloc, nil
	}

	largestRemainder(totalCents, denominator, buckets)

	for _, b := range buckets {
		if b.unlisted {
			alloc.Unallocated = fromCents(b.cents)
			continue
		}
		alloc.PerMember[b.id] = fromCents(b.cents)
	}
	return alloc, nil
}

type bucket struct {
	id        string
	weight    decimal.Decimal
	unlisted  bool
	cents     int64
	remainder decimal.Decimal
}

// largestRemainder hands out total cents proportionally to bucket weights.
// Floors first, then one extra cent per bucket by descending remainder; ties keep
// bucket order.
func largestRemainder(total int64, denominator decimal.Decimal, buckets []bucket) {
	if len(buckets) == 0 {
		return
	}
	t := decimal.NewFromInt(total)
	var assigned int64
	for i := range buckets {
		exact := t.Mul(buckets[i].weight).Div(denominator)
		floor := exact.Floor()
		buckets[i].cents = floor.IntPart()
		buckets[i].remainder = exact.Sub(floor)
		assigned += buckets[i].cents
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return buckets[order[a]].remainder.GreaterThan(buckets[order[b]].remainder)
	})

	for k := 0; assigned < total; k++ {
		buckets[order[k%len(order)]].cents++
		assigned++
	}
}
