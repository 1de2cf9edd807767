package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		g := createGroup(t, c, "owner", "10", "alice", "bob")

		assert.NotEmpty(t, g.ID)
		assert.Equal(t, "owner", g.OwnerID)
		assertAmount(t, "10", g.TaxRate)
		assertAmount(t, "0", g.Total)
		require.Len(t, g.Members, 2)
		for _, m := range g.Members {
			// Nothing is due yet, so new members start settled.
			assert.True(t, m.IsPaid, "member %s", m.UserID)
			assertAmount(t, "0", m.AmountOwed)
		}
	})
}

func TestCreateGroupValidation(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()

		_, err := c.groups.CreateGroup(ctx, as("owner", &api.CreateGroupRequest{Name: ""}))
		assertCode(t, connect.CodeInvalidArgument, err)

		_, err = c.groups.CreateGroup(ctx, as("owner", &api.CreateGroupRequest{Name: "Trip", TaxRate: d("-1")}))
		assertCode(t, connect.CodeInvalidArgument, err)

		_, err = c.groups.CreateGroup(ctx, as("owner", &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{"owner"}}))
		assertCode(t, connect.CodeInvalidArgument, err)

		_, err = c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
		assertCode(t, connect.CodeUnauthenticated, err)
	})
}

func TestGetGroupAccess(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "0", "alice")

		for _, user := range []string{"owner", "alice"} {
			resp, err := c.groups.GetGroup(ctx, as(user, &api.GetGroupRequest{GroupID: g.ID}))
			require.NoError(t, err, "user %s", user)
			assert.Equal(t, g.ID, resp.Msg.Group.ID)
		}

		_, err := c.groups.GetGroup(ctx, as("mallory", &api.GetGroupRequest{GroupID: g.ID}))
		assertCode(t, connect.CodePermissionDenied, err)

		_, err = c.groups.GetGroup(ctx, as("owner", &api.GetGroupRequest{GroupID: "missing"}))
		assertCode(t, connect.CodeNotFound, err)
	})
}

func TestListGroups(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		createGroup(t, c, "owner", "0", "alice")
		createGroup(t, c, "alice", "0", "bob")
		createGroup(t, c, "carol", "0")

		resp, err := c.groups.ListGroups(ctx, as("alice", &api.ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Groups, 2)

		resp, err = c.groups.ListGroups(ctx, as("dave", &api.ListGroupsRequest{}))
		require.NoError(t, err)
		assert.Empty(t, resp.Msg.Groups)
	})
}

func TestUpdateGroupRatesRecomputes(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "0", "alice", "bob")
		createItem(t, c, "owner", g.ID, "100")

		tax := d("10")
		name := "Renamed"
		resp, err := c.groups.UpdateGroup(ctx, as("owner", &api.UpdateGroupRequest{
			GroupID: g.ID,
			Name:    &name,
			TaxRate: &tax,
		}))
		require.NoError(t, err)

		got := resp.Msg.Group
		assert.Equal(t, "Renamed", got.Name)
		assertAmount(t, "55", member(t, got, "alice").AmountOwed)
		assertAmount(t, "55", member(t, got, "bob").AmountOwed)
		assertAmount(t, "110", got.Total)

		_, err = c.groups.UpdateGroup(ctx, as("alice", &api.UpdateGroupRequest{GroupID: g.ID, Name: &name}))
		assertCode(t, connect.CodePermissionDenied, err)

		neg := d("-5")
		_, err = c.groups.UpdateGroup(ctx, as("owner", &api.UpdateGroupRequest{GroupID: g.ID, ServiceChargeRate: &neg}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})
}

func TestDeleteGroup(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "0", "alice")

		_, err := c.groups.DeleteGroup(ctx, as("alice", &api.DeleteGroupRequest{GroupID: g.ID}))
		assertCode(t, connect.CodePermissionDenied, err)

		_, err = c.groups.DeleteGroup(ctx, as("owner", &api.DeleteGroupRequest{GroupID: g.ID}))
		require.NoError(t, err)

		_, err = c.groups.GetGroup(ctx, as("owner", &api.GetGroupRequest{GroupID: g.ID}))
		assertCode(t, connect.CodeNotFound, err)

		_, err = c.groups.DeleteGroup(ctx, as("owner", &api.DeleteGroupRequest{GroupID: g.ID}))
		assertCode(t, connect.CodeNotFound, err)
	})
}

func TestAddMember(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "0", "alice")
		createItem(t, c, "owner", g.ID, "40")

		resp, err := c.groups.AddMember(ctx, as("owner", &api.AddMemberRequest{GroupID: g.ID, UserID: "bob"}))
		require.NoError(t, err)

		got := resp.Msg.Group
		require.Len(t, got.Members, 2)
		// alice's existing item is not re-split onto bob.
		assertAmount(t, "40", member(t, got, "alice").AmountOwed)
		assert.True(t, member(t, got, "bob").IsPaid)
		assertAmount(t, "40", got.Total)

		_, err = c.groups.AddMember(ctx, as("owner", &api.AddMemberRequest{GroupID: g.ID, UserID: "bob"}))
		assertCode(t, connect.CodeAlreadyExists, err)

		_, err = c.groups.AddMember(ctx, as("owner", &api.AddMemberRequest{GroupID: g.ID, UserID: "owner"}))
		assertCode(t, connect.CodeInvalidArgument, err)

		_, err = c.groups.AddMember(ctx, as("alice", &api.AddMemberRequest{GroupID: g.ID, UserID: "carol"}))
		assertCode(t, connect.CodePermissionDenied, err)
	})
}

func TestRemoveMemberSkipsDepartedShares(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "0", "alice", "bob")
		createItem(t, c, "owner", g.ID, "100")

		resp, err := c.groups.RemoveMember(ctx, as("owner", &api.RemoveMemberRequest{GroupID: g.ID, UserID: "bob"}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Group.Members, 1)
		assertAmount(t, "50", member(t, resp.Msg.Group, "alice").AmountOwed)
		assertAmount(t, "50", resp.Msg.Group.Total)

		rc, err := c.groups.RecomputeGroup(ctx, as("alice", &api.RecomputeGroupRequest{GroupID: g.ID}))
		require.NoError(t, err)
		require.Len(t, rc.Msg.Skipped, 1)
		assert.Equal(t, "bob", rc.Msg.Skipped[0].UserID)
		assertAmount(t, "50", rc.Msg.Skipped[0].Amount)

		_, err = c.groups.RemoveMember(ctx, as("owner", &api.RemoveMemberRequest{GroupID: g.ID, UserID: "bob"}))
		assertCode(t, connect.CodeNotFound, err)
	})
}

func TestGetGroupBalances(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g := createGroup(t, c, "owner", "10", "alice", "bob")
		createItem(t, c, "owner", g.ID, "60", "alice")
		createItem(t, c, "owner", g.ID, "40", "bob")

		resp, err := c.groups.GetGroupBalances(ctx, as("bob", &api.GetGroupBalancesRequest{GroupID: g.ID}))
		require.NoError(t, err)

		assertAmount(t, "100", resp.Msg.Subtotal)
		assertAmount(t, "10", resp.Msg.Surcharge)
		assertAmount(t, "110", resp.Msg.GroupTotal)
		require.Len(t, resp.Msg.Balances, 2)
		assert.Equal(t, "alice", resp.Msg.Balances[0].UserID)
		assertAmount(t, "60", resp.Msg.Balances[0].Subtotal)
		assertAmount(t, "6", resp.Msg.Balances[0].Surcharge)
		assertAmount(t, "66", resp.Msg.Balances[0].Due)
		assertAmount(t, "44", resp.Msg.Balances[1].AmountOwed)
	})
}

func TestGetFriendBalance(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		shared := createGroup(t, c, "owner", "0", "alice", "bob")
		createItem(t, c, "owner", shared.ID, "30")

		mine := createGroup(t, c, "alice", "0", "bob")
		createItem(t, c, "alice", mine.ID, "20")

		resp, err := c.groups.GetFriendBalance(ctx, as("alice", &api.GetFriendBalanceRequest{FriendID: "bob"}))
		require.NoError(t, err)
		assertAmount(t, "20", resp.Msg.Net)
		assert.Len(t, resp.Msg.Groups, 2)

		mirror, err := c.groups.GetFriendBalance(ctx, as("bob", &api.GetFriendBalanceRequest{FriendID: "alice"}))
		require.NoError(t, err)
		assertAmount(t, "-20", mirror.Msg.Net)

		_, err = c.groups.GetFriendBalance(ctx, as("alice", &api.GetFriendBalanceRequest{FriendID: "alice"}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})
}

func TestGetSettleUpPlan(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		g1 := createGroup(t, c, "olga", "0", "alice")
		createItem(t, c, "olga", g1.ID, "30")
		g2 := createGroup(t, c, "pete", "0", "alice")
		createItem(t, c, "pete", g2.ID, "10")

		resp, err := c.groups.GetSettleUpPlan(ctx, as("alice", &api.GetSettleUpPlanRequest{}))
		require.NoError(t, err)

		assertAmount(t, "-40", resp.Msg.Net)
		require.Len(t, resp.Msg.Transfers, 2)
		assert.Equal(t, "alice", resp.Msg.Transfers[0].From)
		assert.Equal(t, "olga", resp.Msg.Transfers[0].To)
		assertAmount(t, "30", resp.Msg.Transfers[0].Amount)
		assert.Equal(t, "pete", resp.Msg.Transfers[1].To)
		assertAmount(t, "10", resp.Msg.Transfers[1].Amount)

		owner, err := c.groups.GetSettleUpPlan(ctx, as("olga", &api.GetSettleUpPlanRequest{}))
		require.NoError(t, err)
		assertAmount(t, "30", owner.Msg.Net)
	})
}

func TestGetSettleUpPlanZeroNetOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, c *testClients) {
		ctx := context.Background()
		owned := createGroup(t, c, "alice", "0", "bob")
		createItem(t, c, "alice", owned.ID, "10")
		joined := createGroup(t, c, "olga", "0", "alice")
		createItem(t, c, "olga", joined.ID, "10")

		// bob owes alice what alice owes olga, so the plan is bob -> olga.
		resp, err := c.groups.GetSettleUpPlan(ctx, as("alice", &api.GetSettleUpPlanRequest{}))
		require.NoError(t, err)
		assertAmount(t, "0", resp.Msg.Net)
		assert.Empty(t, resp.Msg.Transfers)

		bob, err := c.groups.GetSettleUpPlan(ctx, as("bob", &api.GetSettleUpPlanRequest{}))
		require.NoError(t, err)
		assertAmount(t, "-10", bob.Msg.Net)
		require.Len(t, bob.Msg.Transfers, 1)
		assert.Equal(t, "alice", bob.Msg.Transfers[0].To)
		assertAmount(t, "10", bob.Msg.Transfers[0].Amount)
	})
}
