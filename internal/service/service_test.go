package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/internal/storage/memory"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

type testClients struct {
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
}

var testStores = map[string]func(t *testing.T) storage.Store{
	"memory": func(t *testing.T) storage.Store {
		return memory.New()
	},
	"sqlite": func(t *testing.T) storage.Store {
		store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err, "failed to create store")
		return store
	},
}

// forEachStore runs fn against a fresh server for every storage backend.
func forEachStore(t *testing.T, fn func(t *testing.T, c *testClients)) {
	for name, newStore := range testStores {
		t.Run(name, func(t *testing.T) {
			fn(t, setupTestServer(t, newStore(t)))
		})
	}
}

// setupTestServer serves both services over httptest. Callers identify
// themselves with the X-User-ID header.
func setupTestServer(t *testing.T, store storage.Store) *testClients {
	t.Helper()

	core := NewCore(store, metrics.New(prometheus.NewRegistry()))
	identity := connect.WithInterceptors(middleware.HeaderIdentity())

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(core), identity)
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(core), identity)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request sent on behalf of userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(middleware.UserIDHeader, userID)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func member(t *testing.T, g *api.Group, userID string) *api.Member {
	t.Helper()
	for _, m := range g.Members {
		if m.UserID == userID {
			return m
		}
	}
	t.Fatalf("member %s not found in group %s", userID, g.ID)
	return nil
}

// createGroup creates a group owned by owner with the given members.
func createGroup(t *testing.T, c *testClients, owner, tax string, members ...string) *api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:      "Test Group",
		TaxRate:   d(tax),
		MemberIDs: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func createItem(t *testing.T, c *testClients, caller, groupID, amount string, assignedTo ...string) *api.CreateItemResponse {
	t.Helper()
	resp, err := c.expenses.CreateItem(context.Background(), as(caller, &api.CreateItemRequest{
		GroupID:    groupID,
		Name:       "Item " + amount,
		Amount:     d(amount),
		AssignedTo: assignedTo,
	}))
	require.NoError(t, err)
	return resp.Msg
}
