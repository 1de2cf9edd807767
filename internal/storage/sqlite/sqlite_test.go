package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")

	store, err := New(dbPath)
	require.NoError(t, err)
	snap := &models.GroupSnapshot{Group: models.Group{Name: "Flat 4B", OwnerID: "owner", TaxRate: decimal.RequireFromString("0.125")}}
	require.NoError(t, store.CreateGroup(ctx, snap))
	group := snap.Group
	require.NoError(t, store.Close())

	// Migrations are already applied the second time round.
	store, err = New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flat 4B", got.Name)
	assert.True(t, got.TaxRate.Equal(decimal.RequireFromString("0.125")), "tax rate %s", got.TaxRate)
}

func TestDirtySchemaRefusesToOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	store, err := New(dbPath)
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = New(dbPath)
	var dirty migrate.ErrDirty
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, 1, dirty.Version)
}

func TestDecimalsRoundTripExactly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	snap := &models.GroupSnapshot{Group: models.Group{Name: "Pennies", OwnerID: "owner"}}
	require.NoError(t, store.CreateGroup(ctx, snap))
	group := snap.Group

	amounts := []string{"0.01", "0.1", "1234567.89", "-3.33"}
	_, err := store.UpdateLedger(ctx, group.ID, func(snap *models.GroupSnapshot) error {
		for i, a := range amounts {
			snap.Members = append(snap.Members, models.Member{
				UserID:     string(rune('a' + i)),
				AmountOwed: decimal.RequireFromString(a),
				JoinedAt:   int64(i + 1),
			})
		}
		return nil
	})
	require.NoError(t, err)

	snap, err = store.GetSnapshot(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, snap.Members, len(amounts))
	for i, a := range amounts {
		assert.True(t, snap.Members[i].AmountOwed.Equal(decimal.RequireFromString(a)), "member %d: %s", i, snap.Members[i].AmountOwed)
	}
}
