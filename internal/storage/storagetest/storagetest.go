// Package storagetest holds behaviour tests shared by every storage.Store
// implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// Run exercises a store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()
	d := decimal.RequireFromString

	newGroup := func(t *testing.T, s storage.Store, owner string) *models.Group {
		t.Helper()
		snap := &models.GroupSnapshot{
			Group: models.Group{Name: "Cabin Trip", OwnerID: owner, TaxRate: d("8.5"), ServiceChargeRate: d("0")},
		}
		require.NoError(t, s.CreateGroup(ctx, snap))
		return &snap.Group
	}

	t.Run("CreateGroup generates ID and timestamp", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")

		assert.NotEmpty(t, g.ID)
		assert.NotZero(t, g.CreatedAt)

		got, err := s.GetGroup(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cabin Trip", got.Name)
		assert.Equal(t, "owner", got.OwnerID)
		assert.True(t, got.TaxRate.Equal(d("8.5")))
	})

	t.Run("CreateGroup stores initial members", func(t *testing.T) {
		s := newStore(t)
		snap := &models.GroupSnapshot{
			Group:   models.Group{Name: "Ski Trip", OwnerID: "owner", Total: d("0")},
			Members: []models.Member{{UserID: "alice", IsPaid: true}, {UserID: "bob", IsPaid: true}},
		}
		require.NoError(t, s.CreateGroup(ctx, snap))

		got, err := s.GetSnapshot(ctx, snap.Group.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alice", "bob"}, got.MemberIDs())
		assert.True(t, got.Member("alice").IsPaid)

		dup := &models.GroupSnapshot{
			Group:   models.Group{Name: "Dup", OwnerID: "owner"},
			Members: []models.Member{{UserID: "alice"}, {UserID: "alice"}},
		}
		assert.ErrorIs(t, s.CreateGroup(ctx, dup), storage.ErrConflict)
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetGroup(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.GetSnapshot(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.UpdateLedger(ctx, "nonexistent-id", func(*models.GroupSnapshot) error { return nil })
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateLedger persists the whole snapshot", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")

		_, err := s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Group.Total = d("33.34")
			snap.Members = append(snap.Members,
				models.Member{UserID: "alice", AmountOwed: d("33.34")},
				models.Member{UserID: "bob", AmountOwed: d("0"), IsPaid: true},
			)
			snap.Items = append(snap.Items, models.Item{
				Name:   "Groceries",
				Amount: d("33.34"),
				Assignments: []models.ItemAssignment{
					{UserID: "alice", Amount: d("33.34")},
				},
			})
			snap.Payments = append(snap.Payments, models.Payment{UserID: "bob", Amount: d("12.5"), Note: "venmo"})
			return nil
		})
		require.NoError(t, err)

		snap, err := s.GetSnapshot(ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, snap.Group.Total.Equal(d("33.34")))

		require.Len(t, snap.Members, 2)
		alice := snap.Member("alice")
		require.NotNil(t, alice)
		assert.True(t, alice.AmountOwed.Equal(d("33.34")), "amount owed %s", alice.AmountOwed)
		assert.False(t, alice.IsPaid)
		assert.True(t, snap.Member("bob").IsPaid)

		require.Len(t, snap.Items, 1)
		item := snap.Items[0]
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, g.ID, item.GroupID)
		assert.True(t, item.Amount.Equal(d("33.34")))
		require.Len(t, item.Assignments, 1)
		assert.Equal(t, item.ID, item.Assignments[0].ItemID)

		require.Len(t, snap.Payments, 1)
		assert.Equal(t, "venmo", snap.Payments[0].Note)
		assert.True(t, snap.Payments[0].Amount.Equal(d("12.5")))
	})

	t.Run("UpdateLedger replaces removed rows", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")

		snap, err := s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = []models.Member{{UserID: "alice"}, {UserID: "bob"}}
			snap.Items = []models.Item{{Name: "Taxi", Amount: d("20")}, {Name: "Lunch", Amount: d("15")}}
			return nil
		})
		require.NoError(t, err)
		keep := snap.Items[1].ID

		_, err = s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = snap.Members[:1]
			snap.Items = []models.Item{*snap.Item(keep)}
			return nil
		})
		require.NoError(t, err)

		snap, err = s.GetSnapshot(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, snap.Members, 1)
		assert.Equal(t, "alice", snap.Members[0].UserID)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, keep, snap.Items[0].ID)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")
		boom := errors.New("boom")

		_, err := s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = append(snap.Members, models.Member{UserID: "alice"})
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = append(snap.Members, models.Member{UserID: "alice"}, models.Member{UserID: "alice"})
			return nil
		})
		assert.ErrorIs(t, err, storage.ErrConflict)

		snap, err := s.GetSnapshot(ctx, g.ID)
		require.NoError(t, err)
		assert.Empty(t, snap.Members)
	})

	t.Run("snapshots are not shared", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")

		snap, err := s.GetSnapshot(ctx, g.ID)
		require.NoError(t, err)
		snap.Members = append(snap.Members, models.Member{UserID: "intruder"})
		snap.Group.Name = "changed"

		again, err := s.GetSnapshot(ctx, g.ID)
		require.NoError(t, err)
		assert.Empty(t, again.Members)
		assert.Equal(t, "Cabin Trip", again.Group.Name)
	})

	t.Run("ListGroupsByUser covers owners and members", func(t *testing.T) {
		s := newStore(t)
		owned := newGroup(t, s, "alice")
		joined := newGroup(t, s, "bob")
		newGroup(t, s, "carol")

		_, err := s.UpdateLedger(ctx, joined.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = append(snap.Members, models.Member{UserID: "alice"})
			return nil
		})
		require.NoError(t, err)

		groups, err := s.ListGroupsByUser(ctx, "alice")
		require.NoError(t, err)
		ids := make([]string, 0, len(groups))
		for _, g := range groups {
			ids = append(ids, g.ID)
		}
		assert.ElementsMatch(t, []string{owned.ID, joined.ID}, ids)

		groups, err = s.ListGroupsByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("DeleteGroup removes everything", func(t *testing.T) {
		s := newStore(t)
		g := newGroup(t, s, "owner")
		_, err := s.UpdateLedger(ctx, g.ID, func(snap *models.GroupSnapshot) error {
			snap.Members = []models.Member{{UserID: "alice"}}
			snap.Items = []models.Item{{Name: "Fuel", Amount: d("40"), Assignments: []models.ItemAssignment{{UserID: "alice", Amount: d("40")}}}}
			return nil
		})
		require.NoError(t, err)

		require.NoError(t, s.DeleteGroup(ctx, g.ID))
		_, err = s.GetGroup(ctx, g.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteGroup(ctx, g.ID), storage.ErrNotFound)

		groups, err := s.ListGroupsByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}
