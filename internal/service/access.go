package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// snapshotLoadLimit caps concurrent snapshot loads for cross-group reads.
const snapshotLoadLimit = 8

func requireParticipant(snap *models.GroupSnapshot, userID string) error {
	if !snap.Participates(userID) {
		return fmt.Errorf("%w: group %s", errNotParticipant, snap.Group.ID)
	}
	return nil
}

func requireOwner(snap *models.GroupSnapshot, userID string) error {
	if snap.Group.OwnerID != userID {
		if !snap.Participates(userID) {
			return fmt.Errorf("%w: group %s", errNotParticipant, snap.Group.ID)
		}
		return fmt.Errorf("%w: group %s", errNotOwner, snap.Group.ID)
	}
	return nil
}

// readSnapshot loads a group the caller takes part in.
func (c *Core) readSnapshot(ctx context.Context, groupID, userID string) (*models.GroupSnapshot, error) {
	snap, err := c.store.GetSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(snap, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// userSnapshots loads every group the user owns or belongs to. Groups deleted
// while loading are left out.
func (c *Core) userSnapshots(ctx context.Context, userID string) ([]*models.GroupSnapshot, error) {
	groups, err := c.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snaps := make([]*models.GroupSnapshot, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotLoadLimit)
	for i, group := range groups {
		g.Go(func() error {
			snap, err := c.store.GetSnapshot(gctx, group.ID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("group %s: %w", group.ID, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := snaps[:0]
	for _, snap := range snaps {
		if snap != nil {
			out = append(out, snap)
		}
	}
	return out, nil
}
