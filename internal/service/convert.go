package service

import (
	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/pkg/api"
)

// groupView converts a stored snapshot into the calculator's input.
func groupView(snap *models.GroupSnapshot) calculator.GroupView {
	g := calculator.GroupView{
		ID:      snap.Group.ID,
		OwnerID: snap.Group.OwnerID,
		Rates: calculator.Rates{
			Tax:           snap.Group.TaxRate,
			ServiceCharge: snap.Group.ServiceChargeRate,
		},
		Members:  make([]calculator.MemberView, 0, len(snap.Members)),
		Items:    make([]calculator.ItemView, 0, len(snap.Items)),
		Payments: make([]calculator.PaymentView, 0, len(snap.Payments)),
	}
	for _, m := range snap.Members {
		g.Members = append(g.Members, calculator.MemberView{
			UserID:     m.UserID,
			IsPaid:     m.IsPaid,
			AmountOwed: m.AmountOwed,
		})
	}
	for i := range snap.Items {
		g.Items = append(g.Items, itemView(&snap.Items[i]))
	}
	for _, p := range snap.Payments {
		g.Payments = append(g.Payments, calculator.PaymentView{UserID: p.UserID, Amount: p.Amount})
	}
	return g
}

func itemView(item *models.Item) calculator.ItemView {
	v := calculator.ItemView{
		ID:          item.ID,
		Amount:      item.Amount,
		Assignments: make([]calculator.Assignment, 0, len(item.Assignments)),
	}
	for _, a := range item.Assignments {
		v.Assignments = append(v.Assignments, calculator.Assignment{UserID: a.UserID, Amount: a.Amount})
	}
	return v
}

// liveItemView drops shares of users who have left the group. Their shares
// were already written off when they were removed.
func liveItemView(snap *models.GroupSnapshot, item *models.Item) calculator.ItemView {
	v := itemView(item)
	live := v.Assignments[:0]
	for _, a := range v.Assignments {
		if a.UserID == snap.Group.OwnerID || snap.Member(a.UserID) != nil {
			live = append(live, a)
		}
	}
	v.Assignments = live
	return v
}

func toAPIGroup(snap *models.GroupSnapshot) *api.Group {
	g := &api.Group{
		ID:                snap.Group.ID,
		Name:              snap.Group.Name,
		OwnerID:           snap.Group.OwnerID,
		TaxRate:           snap.Group.TaxRate,
		ServiceChargeRate: snap.Group.ServiceChargeRate,
		Total:             snap.Group.Total,
		Members:           make([]*api.Member, 0, len(snap.Members)),
		CreatedAt:         snap.Group.CreatedAt,
	}
	for i := range snap.Members {
		g.Members = append(g.Members, toAPIMember(&snap.Members[i]))
	}
	return g
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		UserID:      m.UserID,
		AmountOwed:  m.AmountOwed,
		Outstanding: calculator.Outstanding(m.AmountOwed, m.IsPaid),
		IsPaid:      m.IsPaid,
		JoinedAt:    m.JoinedAt,
	}
}

func toAPIItem(item *models.Item) *api.Item {
	out := &api.Item{
		ID:          item.ID,
		GroupID:     item.GroupID,
		Name:        item.Name,
		Amount:      item.Amount,
		Assignments: make([]*api.Assignment, 0, len(item.Assignments)),
		CreatedAt:   item.CreatedAt,
	}
	for _, a := range item.Assignments {
		out.Assignments = append(out.Assignments, &api.Assignment{UserID: a.UserID, Amount: a.Amount})
	}
	return out
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:        p.ID,
		GroupID:   p.GroupID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
		CreatedBy: p.CreatedBy,
	}
}

func toAPIBalances(res *calculator.Result) []*api.MemberBalance {
	out := make([]*api.MemberBalance, 0, len(res.Members))
	for _, b := range res.Members {
		out = append(out, &api.MemberBalance{
			UserID:      b.UserID,
			Subtotal:    b.Subtotal,
			Surcharge:   b.Surcharge,
			Due:         b.Due,
			Paid:        b.Paid,
			AmountOwed:  b.AmountOwed,
			Outstanding: b.Outstanding(),
			IsPaid:      b.IsPaid,
		})
	}
	return out
}

func toAPISkipped(skipped []calculator.SkippedShare) []*api.SkippedShare {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]*api.SkippedShare, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, &api.SkippedShare{ItemID: s.ItemID, UserID: s.UserID, Amount: s.Amount})
	}
	return out
}
