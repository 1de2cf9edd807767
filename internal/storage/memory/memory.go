// Package memory provides an in-process implementation of storage.Store.
// It is used by tests and by the server when STORE=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps every group snapshot in a map guarded by one lock.
// Snapshots are copied on the way in and out so callers never share memory
// with the store.
type Store struct {
	mu     sync.RWMutex
	groups map[string]*models.GroupSnapshot
}

// New creates an empty Store.
func New() *Store {
	return &Store{groups: make(map[string]*models.GroupSnapshot)}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// CreateGroup stores a new group with its initial members.
func (s *Store) CreateGroup(ctx context.Context, snap *models.GroupSnapshot) error {
	if err := storage.PrepareNew(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[snap.Group.ID]; exists {
		return fmt.Errorf("%w: group %s", storage.ErrConflict, snap.Group.ID)
	}
	s.groups[snap.Group.ID] = snap.Clone()
	return nil
}

// GetGroup returns a copy of the group row.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	group := snap.Group
	return &group, nil
}

// ListGroupsByUser returns the groups a user owns or belongs to, oldest first.
func (s *Store) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.Group
	for _, snap := range s.groups {
		if snap.Participates(userID) {
			group := snap.Group
			groups = append(groups, &group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt < groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// DeleteGroup removes a group and everything in it.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	delete(s.groups, groupID)
	return nil
}

// GetSnapshot returns a deep copy of a group's snapshot.
func (s *Store) GetSnapshot(ctx context.Context, groupID string) (*models.GroupSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	return snap.Clone(), nil
}

// UpdateLedger runs fn on a copy of the snapshot and swaps it in on success.
func (s *Store) UpdateLedger(ctx context.Context, groupID string, fn storage.LedgerFunc) (*models.GroupSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Group.ID = groupID
	if err := storage.Prepare(working); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.groups[groupID] = working
	return working.Clone(), nil
}
