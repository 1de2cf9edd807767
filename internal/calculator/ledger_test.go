package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func share(user, amount string) Assignment {
	return Assignment{UserID: user, Amount: d(amount)}
}

func newTestLedger(t *testing.T, mm ...MemberView) *Ledger {
	t.Helper()
	l, err := NewLedger(GroupView{
		ID:      "g1",
		OwnerID: "owner",
		Rates:   Rates{Tax: d("10"), ServiceCharge: d("15")},
		Members: mm,
	})
	require.NoError(t, err)
	return l
}

func TestLedgerItemCreate(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice"}, MemberView{UserID: "bob", IsPaid: true, AmountOwed: d("10")})

	changed, err := l.ApplyItemCreate(ItemView{
		ID:          "i1",
		Amount:      d("120"),
		Assignments: []Assignment{share("owner", "40"), share("alice", "40"), share("bob", "40")},
	})
	require.NoError(t, err)

	require.Len(t, changed, 1, "owner and paid members do not accrue")
	assert.Equal(t, "alice", changed[0].UserID)
	assertAmount(t, "50", changed[0].AmountOwed)

	bob, _ := l.Member("bob")
	assertAmount(t, "10", bob.AmountOwed)
	assertAmount(t, "50", l.Total())
}

func TestLedgerItemCreateWithoutAssignments(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice"}, MemberView{UserID: "bob"})

	changed, err := l.ApplyItemCreate(ItemView{ID: "i1", Amount: d("20")})
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assertAmount(t, "12.5", changed[0].AmountOwed)
	assertAmount(t, "12.5", changed[1].AmountOwed)
}

func TestLedgerItemCreateUnknownMember(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice"})

	_, err := l.ApplyItemCreate(ItemView{
		ID:          "i1",
		Amount:      d("20"),
		Assignments: []Assignment{share("alice", "10"), share("ghost", "10")},
	})
	require.ErrorIs(t, err, ErrMemberNotFound)

	alice, _ := l.Member("alice")
	assertAmount(t, "0", alice.AmountOwed, "a rejected item changes nothing")
}

func TestLedgerItemUpdate(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice"}, MemberView{UserID: "bob"})

	old := ItemView{ID: "i1", Amount: d("60"), Assignments: []Assignment{share("alice", "60")}}
	_, err := l.ApplyItemCreate(old)
	require.NoError(t, err)

	updated := ItemView{ID: "i1", Amount: d("60"), Assignments: []Assignment{share("alice", "30"), share("bob", "30")}}
	changed, err := l.ApplyItemUpdate(old, updated)
	require.NoError(t, err)
	require.Len(t, changed, 2)

	assertAmount(t, "37.5", changed[0].AmountOwed)
	assertAmount(t, "37.5", changed[1].AmountOwed)
	assertAmount(t, "75", l.Total())
}

func TestLedgerItemDelete(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice", AmountOwed: d("5")}, MemberView{UserID: "bob"})

	stale := l.ApplyItemDelete(ItemView{ID: "i1", Assignments: []Assignment{share("bob", "5"), share("owner", "5")}})
	assert.Equal(t, []string{"bob"}, stale)

	stale = l.ApplyItemDelete(ItemView{ID: "i2"})
	assert.Equal(t, []string{"alice", "bob"}, stale)

	alice, _ := l.Member("alice")
	assertAmount(t, "5", alice.AmountOwed, "delete does not adjust balances")
}

func TestLedgerPayment(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice", AmountOwed: d("75")}, MemberView{UserID: "bob", AmountOwed: d("20"), IsPaid: true})

	alice, err := l.ApplyPayment("alice", d("25"))
	require.NoError(t, err)
	assertAmount(t, "50", alice.AmountOwed)
	assert.False(t, alice.IsPaid)

	alice, err = l.ApplyPayment("alice", d("50"))
	require.NoError(t, err)
	assertAmount(t, "0", alice.AmountOwed)
	assert.True(t, alice.IsPaid)

	bob, err := l.ApplyPayment("bob", d("5"))
	require.NoError(t, err)
	assertAmount(t, "15", bob.AmountOwed, "payments apply to paid members")

	_, err = l.ApplyPayment("ghost", d("1"))
	assert.ErrorIs(t, err, ErrMemberNotFound)
	_, err = l.ApplyPayment("alice", d("-1"))
	assert.ErrorIs(t, err, ErrNegativeAmount)
	_, err = l.ApplyPayment("owner", d("1"))
	assert.ErrorIs(t, err, ErrMemberNotFound, "the owner has no balance to pay down")
}

func TestLedgerSetPaid(t *testing.T) {
	l := newTestLedger(t, MemberView{UserID: "alice", AmountOwed: d("40")})

	m, err := l.SetPaid("alice", true)
	require.NoError(t, err)
	assert.True(t, m.IsPaid)
	assertAmount(t, "40", m.AmountOwed, "flag does not zero the balance")
	assertAmount(t, "0", l.Total())

	_, err = l.SetPaid("alice", false)
	require.NoError(t, err)
	assertAmount(t, "40", l.Total())

	_, err = l.SetPaid("ghost", true)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestLedgerAgreesWithRecompute(t *testing.T) {
	g := GroupView{
		ID:      "g1",
		OwnerID: "owner",
		Rates:   Rates{Tax: d("10"), ServiceCharge: d("15")},
		Members: members("alice", "bob"),
	}
	l, err := NewLedger(g)
	require.NoError(t, err)

	for _, item := range []ItemView{
		{ID: "steak", Amount: d("60"), Assignments: []Assignment{share("alice", "60")}},
		{ID: "salad", Amount: d("40"), Assignments: []Assignment{share("bob", "40")}},
	} {
		_, err := l.ApplyItemCreate(item)
		require.NoError(t, err)
		g.Items = append(g.Items, item)
	}

	res, err := Recompute(g)
	require.NoError(t, err)
	for _, m := range l.Balances() {
		assert.True(t, m.AmountOwed.Equal(res.Balances[m.UserID]), "%s: ledger %s, recompute %s", m.UserID, m.AmountOwed, res.Balances[m.UserID])
	}
	assert.True(t, l.Total().Equal(res.GroupTotal))
}

func TestNewLedgerRejectsNegativeRates(t *testing.T) {
	_, err := NewLedger(GroupView{ID: "g1", Rates: Rates{Tax: d("-1")}})
	assert.ErrorIs(t, err, ErrInvalidRate)
}
