package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// GroupContribution is one shared group's part of a friend balance.
type GroupContribution struct {
	GroupID string
	Amount  decimal.Decimal
}

// FriendSummary is the cross-group balance between two users.
// Positive Net means the counterparty owes the viewer.
type FriendSummary struct {
	ViewerID       string
	CounterpartyID string
	Net            decimal.Decimal
	Groups         []GroupContribution
}

// FriendBalance sums what two users owe each other over the groups they share.
//
// Only owner/member pairs carry a debt: when the viewer owns a group the
// counterparty's outstanding balance counts for the viewer, when the
// counterparty owns it the viewer's outstanding balance counts against.
// Groups where both are plain members contribute nothing.
func FriendBalance(viewerID, counterpartyID string, groups []GroupView, opts ...Option) (*FriendSummary, error) {
	if viewerID == "" || counterpartyID == "" || viewerID == counterpartyID {
		return nil, ErrSameUser
	}

	summary := &FriendSummary{
		ViewerID:       viewerID,
		CounterpartyID: counterpartyID,
		Net:            decimal.Zero,
	}
	for _, g := range groups {
		if !g.Participates(viewerID) || !g.Participates(counterpartyID) {
			continue
		}
		res, err := Recompute(g, opts...)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.ID, err)
		}

		amount := decimal.Zero
		switch {
		case g.OwnerID == viewerID:
			if b, ok := res.Member(counterpartyID); ok {
				amount = b.Outstanding()
			}
		case g.OwnerID == counterpartyID:
			if b, ok := res.Member(viewerID); ok {
				amount = b.Outstanding().Neg()
			}
		}
		summary.Net = summary.Net.Add(amount)
		summary.Groups = append(summary.Groups, GroupContribution{GroupID: g.ID, Amount: amount})
	}
	sort.Slice(summary.Groups, func(i, j int) bool {
		return summary.Groups[i].GroupID < summary.Groups[j].GroupID
	})
	return summary, nil
}
