// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/models"
)

var (
	// ErrNotFound is returned when a group (or an item inside it) does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would duplicate a unique record.
	ErrConflict = errors.New("already exists")
)

// LedgerFunc mutates a loaded snapshot. Returning an error aborts the update and
// nothing is written.
type LedgerFunc func(snap *models.GroupSnapshot) error

// Store defines the interface for group ledger storage.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group together with its initial members.
	// The group's ID and CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, snap *models.GroupSnapshot) error

	// GetGroup retrieves a group row by its ID.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByUser returns every group the user owns or belongs to,
	// oldest first.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes a group with its members, items and payments.
	DeleteGroup(ctx context.Context, groupID string) error

	// GetSnapshot loads a group with its members, items and payments.
	GetSnapshot(ctx context.Context, groupID string) (*models.GroupSnapshot, error)

	// UpdateLedger loads a snapshot, hands it to fn and persists whatever fn
	// leaves behind, atomically. If fn fails nothing changes.
	UpdateLedger(ctx context.Context, groupID string, fn LedgerFunc) (*models.GroupSnapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// Prepare fills in missing ids and timestamps and rejects duplicate members,
// items or payments. Stores call it before persisting a snapshot.
func Prepare(snap *models.GroupSnapshot) error {
	now := time.Now().Unix()

	members := make(map[string]bool, len(snap.Members))
	for i := range snap.Members {
		m := &snap.Members[i]
		if members[m.UserID] {
			return fmt.Errorf("%w: member %s in group %s", ErrConflict, m.UserID, snap.Group.ID)
		}
		members[m.UserID] = true
		m.GroupID = snap.Group.ID
		if m.JoinedAt == 0 {
			m.JoinedAt = now
		}
	}

	items := make(map[string]bool, len(snap.Items))
	for i := range snap.Items {
		item := &snap.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if items[item.ID] {
			return fmt.Errorf("%w: item %s", ErrConflict, item.ID)
		}
		items[item.ID] = true
		item.GroupID = snap.Group.ID
		if item.CreatedAt == 0 {
			item.CreatedAt = now
		}
		assigned := make(map[string]bool, len(item.Assignments))
		for j := range item.Assignments {
			a := &item.Assignments[j]
			if assigned[a.UserID] {
				return fmt.Errorf("%w: %s assigned twice to item %s", ErrConflict, a.UserID, item.ID)
			}
			assigned[a.UserID] = true
			a.ItemID = item.ID
		}
	}

	payments := make(map[string]bool, len(snap.Payments))
	for i := range snap.Payments {
		p := &snap.Payments[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if payments[p.ID] {
			return fmt.Errorf("%w: payment %s", ErrConflict, p.ID)
		}
		payments[p.ID] = true
		p.GroupID = snap.Group.ID
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
	}
	return nil
}

// PrepareNew readies a snapshot for its first write: it assigns the group id
// and creation time, then runs Prepare.
func PrepareNew(snap *models.GroupSnapshot) error {
	if snap.Group.ID == "" {
		snap.Group.ID = uuid.New().String()
	}
	if snap.Group.CreatedAt == 0 {
		snap.Group.CreatedAt = time.Now().Unix()
	}
	return Prepare(snap)
}
