// Package service implements the Connect GroupService and ExpenseService.
//
// Every write goes through Core.mutate: the group's lock is taken, the stored
// snapshot is loaded, changed and saved in one storage.UpdateLedger call, and
// the committed totals are published to metrics.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// Core is the state shared by both services.
type Core struct {
	store   storage.Store
	metrics *metrics.Metrics
	locks   *groupLocks
}

// NewCore wires the store and metrics used by the services.
func NewCore(store storage.Store, m *metrics.Metrics) *Core {
	return &Core{
		store:   store,
		metrics: m,
		locks:   newGroupLocks(),
	}
}

// mutate applies fn to the group's snapshot under the group's lock and
// persists the result. Nothing is written if fn fails.
func (c *Core) mutate(ctx context.Context, groupID, op string, fn storage.LedgerFunc) (*models.GroupSnapshot, error) {
	unlock := c.locks.lock(groupID)
	defer unlock()

	snap, err := c.store.UpdateLedger(ctx, groupID, fn)
	if err != nil {
		return nil, err
	}
	c.metrics.Mutation(op)
	c.metrics.SetOutstanding(groupID, snap.Group.Total)
	return snap, nil
}

// recompute rebuilds every member balance and the group total from the
// snapshot's items and payments and writes them back into snap.
func (c *Core) recompute(snap *models.GroupSnapshot, trigger string) (*calculator.Result, error) {
	start := time.Now()
	res, err := calculator.Recompute(groupView(snap))
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveRecompute(trigger, time.Since(start))

	for i := range snap.Members {
		if b, ok := res.Member(snap.Members[i].UserID); ok {
			snap.Members[i].AmountOwed = b.AmountOwed
			snap.Members[i].IsPaid = b.IsPaid
			if b.AutoSettled {
				slog.Debug("Member auto-settled", "group_id", snap.Group.ID, "user_id", b.UserID)
			}
		}
	}
	snap.Group.Total = res.GroupTotal

	if len(res.Skipped) > 0 {
		slog.Warn("Recompute skipped shares of departed members",
			"group_id", snap.Group.ID,
			"trigger", trigger,
			"skipped", len(res.Skipped),
		)
	}
	return res, nil
}

// applyLedger copies a ledger's cached balances back into snap.
func applyLedger(snap *models.GroupSnapshot, l *calculator.Ledger) {
	for i := range snap.Members {
		if m, ok := l.Member(snap.Members[i].UserID); ok {
			snap.Members[i].AmountOwed = m.AmountOwed
			snap.Members[i].IsPaid = m.IsPaid
		}
	}
	snap.Group.Total = l.Total()
}

// groupLocks hands out one mutex per group id. Entries are dropped once no
// caller holds or waits for them.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	mu   sync.Mutex
	refs int
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*groupLock)}
}

func (g *groupLocks) lock(groupID string) (unlock func()) {
	g.mu.Lock()
	l, ok := g.locks[groupID]
	if !ok {
		l = &groupLock{}
		g.locks[groupID] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, groupID)
		}
		g.mu.Unlock()
	}
}
