package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendBalance(t *testing.T) {
	groups := []GroupView{
		{
			// viewer owns, counterparty owes 30
			ID:      "g1",
			OwnerID: "viewer",
			Members: members("friend", "other"),
			Items:   []ItemView{assigned("1", "60", "friend", "other")},
		},
		{
			// friend owns, viewer owes 10
			ID:      "g2",
			OwnerID: "friend",
			Members: members("viewer"),
			Items:   []ItemView{assigned("1", "10", "viewer")},
		},
		{
			// both plain members
			ID:      "g3",
			OwnerID: "host",
			Members: members("viewer", "friend"),
			Items:   []ItemView{assigned("1", "100", "viewer", "friend")},
		},
		{
			// friend not in group
			ID:      "g4",
			OwnerID: "viewer",
			Members: members("other"),
			Items:   []ItemView{assigned("1", "100", "other")},
		},
		{
			// friend has settled
			ID:      "g5",
			OwnerID: "viewer",
			Members: []MemberView{{UserID: "friend", IsPaid: true}},
			Items:   []ItemView{assigned("1", "80", "friend")},
		},
	}

	summary, err := FriendBalance("viewer", "friend", groups)
	require.NoError(t, err)

	assertAmount(t, "20", summary.Net)
	require.Len(t, summary.Groups, 4)
	want := map[string]string{"g1": "30", "g2": "-10", "g3": "0", "g5": "0"}
	for _, c := range summary.Groups {
		assertAmount(t, want[c.GroupID], c.Amount, c.GroupID)
	}

	mirror, err := FriendBalance("friend", "viewer", groups)
	require.NoError(t, err)
	assert.True(t, mirror.Net.Equal(summary.Net.Neg()), "the pair is antisymmetric")
}

func TestFriendBalanceErrors(t *testing.T) {
	_, err := FriendBalance("a", "a", nil)
	assert.ErrorIs(t, err, ErrSameUser)

	_, err = FriendBalance("a", "b", []GroupView{{
		ID:      "g1",
		OwnerID: "a",
		Members: members("b"),
		Rates:   Rates{Tax: d("-1")},
	}})
	assert.ErrorIs(t, err, ErrInvalidRate)
}
