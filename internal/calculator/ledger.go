package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Ledger holds a group's cached member balances and applies item, payment and
// paid-flag events to them one at a time. Recompute stays the authority: the
// incremental surcharge is rounded per share, so after many edits the cache can
// sit a cent away from a fresh recompute.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	groupID string
	ownerID string
	rates   Rates
	members map[string]*MemberView
}

// NewLedger builds a ledger from the stored member states of a group.
func NewLedger(g GroupView) (*Ledger, error) {
	if err := g.Rates.Validate(); err != nil {
		return nil, err
	}
	l := &Ledger{
		groupID: g.ID,
		ownerID: g.OwnerID,
		rates:   g.Rates,
		members: make(map[string]*MemberView, len(g.Members)),
	}
	for _, m := range g.Members {
		if m.UserID == "" || m.UserID == g.OwnerID {
			continue
		}
		l.members[m.UserID] = &m
	}
	return l, nil
}

// Accrual is what a share costs a member once the group's surcharge is added.
func (l *Ledger) Accrual(share decimal.Decimal) decimal.Decimal {
	return RoundCents(share.Add(share.Mul(l.rates.Fraction())))
}

// ApplyItemCreate charges each assigned member their share plus surcharge.
// Members already marked paid do not accrue. An item without assignments is
// split among every member.
func (l *Ledger) ApplyItemCreate(item ItemView) ([]MemberView, error) {
	shares, err := l.itemShares(item)
	if err != nil {
		return nil, err
	}
	touched := make(map[string]bool, len(shares))
	for _, a := range shares {
		m := l.members[a.UserID]
		if m.IsPaid {
			continue
		}
		m.AmountOwed = m.AmountOwed.Add(l.Accrual(a.Amount))
		touched[a.UserID] = true
	}
	return l.settle(touched), nil
}

// ApplyItemUpdate reverses the old item's accruals and charges the new one.
// Paid members are left alone on both sides.
func (l *Ledger) ApplyItemUpdate(old, updated ItemView) ([]MemberView, error) {
	oldShares, err := l.itemShares(old)
	if err != nil {
		return nil, fmt.Errorf("previous assignments: %w", err)
	}
	newShares, err := l.itemShares(updated)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]bool, len(oldShares)+len(newShares))
	for _, a := range oldShares {
		m := l.members[a.UserID]
		if m.IsPaid {
			continue
		}
		m.AmountOwed = m.AmountOwed.Sub(l.Accrual(a.Amount))
		touched[a.UserID] = true
	}
	for _, a := range newShares {
		m := l.members[a.UserID]
		if m.IsPaid {
			continue
		}
		m.AmountOwed = m.AmountOwed.Add(l.Accrual(a.Amount))
		touched[a.UserID] = true
	}
	return l.settle(touched), nil
}

// ApplyItemDelete leaves balances as they are and returns the members whose
// cached amounts are now stale. Callers follow up with Recompute.
func (l *Ledger) ApplyItemDelete(item ItemView) []string {
	var stale []string
	for _, a := range item.Assignments {
		if _, ok := l.members[a.UserID]; ok {
			stale = append(stale, a.UserID)
		}
	}
	if len(item.Assignments) == 0 {
		for id := range l.members {
			stale = append(stale, id)
		}
	}
	return uniqueSorted(stale)
}

// ApplyPayment lowers a member's balance. Payments apply to paid members too;
// a member whose balance drops under a cent is settled.
func (l *Ledger) ApplyPayment(userID string, amount decimal.Decimal) (MemberView, error) {
	m, ok := l.members[userID]
	if !ok {
		return MemberView{}, fmt.Errorf("%w: %s in group %s", ErrMemberNotFound, userID, l.groupID)
	}
	owed, err := ApplyPayment(m.AmountOwed, amount)
	if err != nil {
		return MemberView{}, err
	}
	m.AmountOwed = owed
	m.IsPaid = AutoSettle(owed, m.IsPaid)
	return *m, nil
}

// SetPaid sets the paid flag explicitly. Clearing it re-exposes the cached balance.
func (l *Ledger) SetPaid(userID string, paid bool) (MemberView, error) {
	m, ok := l.members[userID]
	if !ok {
		return MemberView{}, fmt.Errorf("%w: %s in group %s", ErrMemberNotFound, userID, l.groupID)
	}
	m.IsPaid = paid
	return *m, nil
}

// Member returns one cached member state.
func (l *Ledger) Member(userID string) (MemberView, bool) {
	m, ok := l.members[userID]
	if !ok {
		return MemberView{}, false
	}
	return *m, true
}

// Balances returns every cached member state ordered by user id.
func (l *Ledger) Balances() []MemberView {
	out := make([]MemberView, 0, len(l.members))
	for _, m := range l.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Total is the sum of amountOwed over members that are not paid.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, m := range l.members {
		total = total.Add(Outstanding(m.AmountOwed, m.IsPaid))
	}
	return total
}

// itemShares resolves an item to per-member shares, dropping the owner and
// rejecting non-members before anything is mutated.
func (l *Ledger) itemShares(item ItemView) ([]Assignment, error) {
	assignments := item.Assignments
	if len(assignments) == 0 {
		ids := make([]string, 0, len(l.members))
		for id := range l.members {
			ids = append(ids, id)
		}
		var err error
		assignments, err = SplitItem(item.Amount, ids)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
	}

	shares := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.UserID == l.ownerID {
			continue
		}
		if _, ok := l.members[a.UserID]; !ok {
			return nil, fmt.Errorf("%w: %s is assigned to item %s", ErrMemberNotFound, a.UserID, item.ID)
		}
		if a.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: share of %s in item %s", ErrNegativeAmount, a.UserID, item.ID)
		}
		shares = append(shares, a)
	}
	return shares, nil
}

func (l *Ledger) settle(touched map[string]bool) []MemberView {
	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]MemberView, 0, len(ids))
	for _, id := range ids {
		m := l.members[id]
		m.IsPaid = AutoSettle(m.AmountOwed, m.IsPaid)
		out = append(out, *m)
	}
	return out
}
