package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// MemberView is a member's stored position as the engine sees it.
type MemberView struct {
	UserID     string
	IsPaid     bool
	AmountOwed decimal.Decimal
}

// ItemView is an expense item. Without assignments the item is split among all
// current members.
type ItemView struct {
	ID          string
	Amount      decimal.Decimal
	Assignments []Assignment
}

func (i ItemView) splitSet() []string {
	ids := make([]string, 0, len(i.Assignments))
	for _, a := range i.Assignments {
		ids = append(ids, a.UserID)
	}
	return uniqueSorted(ids)
}

// PaymentView is money a member has handed over toward their balance.
type PaymentView struct {
	UserID string
	Amount decimal.Decimal
}

// GroupView is an in-memory snapshot of everything that decides a group's balances.
type GroupView struct {
	ID       string
	OwnerID  string
	Rates    Rates
	Members  []MemberView
	Items    []ItemView
	Payments []PaymentView
}

// Participates reports whether the user owns or belongs to the group.
func (g GroupView) Participates(userID string) bool {
	if userID == "" {
		return false
	}
	if g.OwnerID == userID {
		return true
	}
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberBalance is one member's recomputed position.
type MemberBalance struct {
	UserID    string
	Subtotal  decimal.Decimal // sum of item shares
	Surcharge decimal.Decimal // proportional tax + service charge
	Due       decimal.Decimal // Subtotal + Surcharge
	Paid      decimal.Decimal // sum of recorded payments
	// AmountOwed is Due - Paid. Positive means the member owes the owner.
	AmountOwed decimal.Decimal
	IsPaid     bool
	// AutoSettled is set when this recompute flipped IsPaid because the balance hit zero.
	AutoSettled bool
}

// Outstanding is what the member still contributes to the group total.
func (b MemberBalance) Outstanding() decimal.Decimal {
	return Outstanding(b.AmountOwed, b.IsPaid)
}

// SkippedShare is a share or payment that named a user who is no longer a member.
type SkippedShare struct {
	ItemID string // empty for payments
	UserID string
	Amount decimal.Decimal
}

// Result is the output of Recompute.
type Result struct {
	GroupID   string
	OwnerID   string
	Subtotal  decimal.Decimal
	Surcharge *SurchargeAllocation
	// Members is ordered by user id and never contains the owner.
	Members    []MemberBalance
	Balances   map[string]decimal.Decimal
	GroupTotal decimal.Decimal
	Skipped    []SkippedShare
}

// Member looks up one member's balance.
func (r *Result) Member(userID string) (MemberBalance, bool) {
	i := sort.Search(len(r.Members), func(i int) bool { return r.Members[i].UserID >= userID })
	if i < len(r.Members) && r.Members[i].UserID == userID {
		return r.Members[i], true
	}
	return MemberBalance{}, false
}

// AddPositions folds the group's outstanding debts into a cross-group net map:
// the owner is owed what every unsettled member still owes.
func (r *Result) AddPositions(net map[string]decimal.Decimal) {
	for _, m := range r.Members {
		out := m.Outstanding()
		if out.IsZero() {
			continue
		}
		net[r.OwnerID] = net[r.OwnerID].Add(out)
		net[m.UserID] = net[m.UserID].Sub(out)
	}
}

// Option tunes Recompute.
type Option func(*options)

type options struct {
	strict bool
}

// Strict makes shares and payments of non-members an ErrMemberNotFound error
// instead of skipping them.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Recompute reduces a group snapshot to per-member balances and the group total.
//
// Algorithm:
//   - every non-owner member starts with a zero subtotal
//   - each item is split equally over its split set; known non-owner members
//     accrue their share, the item amount goes into the group subtotal
//   - the surcharge is allocated in proportion to member subtotals
//   - recorded payments are netted: amountOwed = due - paid
//   - balances under a cent are auto-settled (the paid flag is never cleared)
//   - the group total sums amountOwed over members that are not paid
//
// The result depends only on the snapshot, not on the order of its slices, so
// running it again on its own output yields the same figures.
func Recompute(g GroupView, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := g.Rates.Validate(); err != nil {
		return nil, err
	}

	// Initialize member accumulators (owner excluded)
	subtotals := make(map[string]decimal.Decimal, len(g.Members))
	flags := make(map[string]bool, len(g.Members))
	memberIDs := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" || m.UserID == g.OwnerID {
			continue
		}
		if _, dup := subtotals[m.UserID]; dup {
			continue
		}
		subtotals[m.UserID] = decimal.Zero
		flags[m.UserID] = m.IsPaid
		memberIDs = append(memberIDs, m.UserID)
	}
	sort.Strings(memberIDs)

	var skipped []SkippedShare

	// Split items
	subtotal := decimal.Zero
	for _, item := range g.Items {
		splitSet := item.splitSet()
		if len(splitSet) == 0 {
			splitSet = memberIDs
		}
		shares, err := SplitEqually(item.Amount, splitSet)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		subtotal = subtotal.Add(item.Amount)

		for _, userID := range sortedKeys(shares) {
			if userID == g.OwnerID {
				continue
			}
			if _, ok := subtotals[userID]; !ok {
				if o.strict {
					return nil, fmt.Errorf("%w: %s is assigned to item %s", ErrMemberNotFound, userID, item.ID)
				}
				skipped = append(skipped, SkippedShare{ItemID: item.ID, UserID: userID, Amount: shares[userID]})
				continue
			}
			subtotals[userID] = subtotals[userID].Add(shares[userID])
		}
	}

	surcharge, err := AllocateSurcharge(subtotal, g.Rates, subtotals)
	if err != nil {
		return nil, err
	}

	// Net payments
	paid := make(map[string]decimal.Decimal, len(memberIDs))
	for _, p := range g.Payments {
		if !p.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: payment by %s of %s", ErrNegativeAmount, p.UserID, p.Amount)
		}
		if _, ok := subtotals[p.UserID]; !ok {
			if o.strict {
				return nil, fmt.Errorf("%w: payment by %s", ErrMemberNotFound, p.UserID)
			}
			skipped = append(skipped, SkippedShare{UserID: p.UserID, Amount: p.Amount})
			continue
		}
		paid[p.UserID] = paid[p.UserID].Add(p.Amount)
	}

	res := &Result{
		GroupID:    g.ID,
		OwnerID:    g.OwnerID,
		Subtotal:   subtotal,
		Surcharge:  surcharge,
		Members:    make([]MemberBalance, 0, len(memberIDs)),
		Balances:   make(map[string]decimal.Decimal, len(memberIDs)),
		GroupTotal: decimal.Zero,
		Skipped:    skipped,
	}

	for _, id := range memberIDs {
		due := subtotals[id].Add(surcharge.PerMember[id])
		owed := due.Sub(paid[id])
		isPaid := AutoSettle(owed, flags[id])

		res.Members = append(res.Members, MemberBalance{
			UserID:      id,
			Subtotal:    subtotals[id],
			Surcharge:   surcharge.PerMember[id],
			Due:         due,
			Paid:        paid[id],
			AmountOwed:  owed,
			IsPaid:      isPaid,
			AutoSettled: isPaid && !flags[id],
		})
		res.Balances[id] = owed
		res.GroupTotal = res.GroupTotal.Add(Outstanding(owed, isPaid))
	}

	return res, nil
}

// Apply writes the recomputed amounts and flags back into the view's members.
// Members are returned in their original order; the owner's record, if any, is untouched.
func (r *Result) Apply(members []MemberView) []MemberView {
	out := make([]MemberView, len(members))
	copy(out, members)
	for i := range out {
		if b, ok := r.Member(out[i].UserID); ok {
			out[i].AmountOwed = b.AmountOwed
			out[i].IsPaid = b.IsPaid
		}
	}
	return out
}
