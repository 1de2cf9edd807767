package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	*Core
}

// NewGroupService creates a new GroupService on the shared core.
func NewGroupService(core *Core) *GroupService {
	return &GroupService{Core: core}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	rates := calculator.Rates{Tax: req.Msg.TaxRate, ServiceCharge: req.Msg.ServiceChargeRate}
	if err := rates.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	snap := &models.GroupSnapshot{
		Group: models.Group{
			Name:              req.Msg.Name,
			OwnerID:           userID,
			TaxRate:           req.Msg.TaxRate,
			ServiceChargeRate: req.Msg.ServiceChargeRate,
			Total:             decimal.Zero,
		},
	}
	for _, memberID := range req.Msg.MemberIDs {
		if memberID == userID {
			return nil, toConnectError(fmt.Errorf("%w: the owner cannot be listed as a member", errInvalidArgument))
		}
		snap.Members = append(snap.Members, models.Member{UserID: memberID, AmountOwed: decimal.Zero})
	}
	if _, err := s.recompute(snap, "group_create"); err != nil {
		return nil, toConnectError(err)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, snap); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.Mutation("group_create")
	s.metrics.SetOutstanding(snap.Group.ID, snap.Group.Total)

	slog.Info("Group created", "group_id", snap.Group.ID, "owner_id", userID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(snap)}), nil
}

// GetGroup retrieves a group with its members' cached balances.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.readSnapshot(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(snap)}), nil
}

// ListGroups lists every group the caller owns or belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("ListGroups request received", "user_id", userID)

	snaps, err := s.userSnapshots(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	groups := make([]*api.Group, 0, len(snaps))
	for _, snap := range snaps {
		groups = append(groups, toAPIGroup(snap))
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}

// UpdateGroup renames a group or changes its surcharge rates. A rate change
// recomputes every balance.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "group_update", func(snap *models.GroupSnapshot) error {
		if err := requireOwner(snap, userID); err != nil {
			return err
		}
		if req.Msg.Name != nil {
			snap.Group.Name = *req.Msg.Name
		}

		rates := calculator.Rates{Tax: snap.Group.TaxRate, ServiceCharge: snap.Group.ServiceChargeRate}
		if req.Msg.TaxRate != nil {
			rates.Tax = *req.Msg.TaxRate
		}
		if req.Msg.ServiceChargeRate != nil {
			rates.ServiceCharge = *req.Msg.ServiceChargeRate
		}
		if err := rates.Validate(); err != nil {
			return err
		}
		if rates.Tax.Equal(snap.Group.TaxRate) && rates.ServiceCharge.Equal(snap.Group.ServiceChargeRate) {
			return nil
		}

		snap.Group.TaxRate = rates.Tax
		snap.Group.ServiceChargeRate = rates.ServiceCharge
		_, err := s.recompute(snap, "rates")
		return err
	})
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", snap.Group.ID)

	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(snap)}), nil
}

// DeleteGroup deletes a group with its items and payments.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.locks.lock(req.Msg.GroupID)
	defer unlock()

	snap, err := s.store.GetSnapshot(ctx, req.Msg.GroupID)
	if err == nil {
		err = requireOwner(snap, userID)
	}
	if err == nil {
		err = s.store.DeleteGroup(ctx, req.Msg.GroupID)
	}
	if err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.Mutation("group_delete")
	s.metrics.ForgetGroup(req.Msg.GroupID)

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a user to a group and recomputes its balances.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "member_add", func(snap *models.GroupSnapshot) error {
		if err := requireOwner(snap, userID); err != nil {
			return err
		}
		if req.Msg.UserID == snap.Group.OwnerID {
			return fmt.Errorf("%w: the owner cannot be added as a member", errInvalidArgument)
		}
		if snap.Member(req.Msg.UserID) != nil {
			return fmt.Errorf("%w: %s is already a member", storage.ErrConflict, req.Msg.UserID)
		}
		snap.Members = append(snap.Members, models.Member{UserID: req.Msg.UserID, AmountOwed: decimal.Zero})
		_, err := s.recompute(snap, "member_add")
		return err
	})
	if err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "group_id", snap.Group.ID, "user_id", req.Msg.UserID)

	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(snap)}), nil
}

// RemoveMember removes a user from a group. Their item shares and payments
// stay on record and are reported as skipped by later recomputes.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "member_remove", func(snap *models.GroupSnapshot) error {
		if err := requireOwner(snap, userID); err != nil {
			return err
		}
		kept := snap.Members[:0]
		for _, m := range snap.Members {
			if m.UserID != req.Msg.UserID {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(snap.Members) {
			return fmt.Errorf("%w: member %s", storage.ErrNotFound, req.Msg.UserID)
		}
		snap.Members = kept
		_, err := s.recompute(snap, "member_remove")
		return err
	})
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member removed", "group_id", snap.Group.ID, "user_id", req.Msg.UserID)

	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(snap)}), nil
}

// RecomputeGroup rebuilds cached balances from items and payments.
func (s *GroupService) RecomputeGroup(ctx context.Context, req *connect.Request[api.RecomputeGroupRequest]) (*connect.Response[api.RecomputeGroupResponse], error) {
	slog.Info("RecomputeGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	var res *calculator.Result
	snap, err := s.mutate(ctx, req.Msg.GroupID, "recompute", func(snap *models.GroupSnapshot) error {
		if err := requireParticipant(snap, userID); err != nil {
			return err
		}
		var err error
		res, err = s.recompute(snap, "manual")
		return err
	})
	if err != nil {
		slog.Error("RecomputeGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecomputeGroupResponse{
		Group:   toAPIGroup(snap),
		Skipped: toAPISkipped(res.Skipped),
	}), nil
}

// GetGroupBalances returns a fresh breakdown of every member's position
// without touching the cached values.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.readSnapshot(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	res, err := calculator.Recompute(groupView(snap))
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		GroupID:    res.GroupID,
		Subtotal:   res.Subtotal,
		Surcharge:  res.Surcharge.Total,
		GroupTotal: res.GroupTotal,
		Balances:   toAPIBalances(res),
	}), nil
}

// GetFriendBalance sums what the caller and another user owe each other over
// the groups they share.
func (s *GroupService) GetFriendBalance(ctx context.Context, req *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("GetFriendBalance request received", "user_id", userID, "friend_id", req.Msg.FriendID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.FriendID == userID {
		return nil, toConnectError(calculator.ErrSameUser)
	}

	snaps, err := s.userSnapshots(ctx, userID)
	if err != nil {
		slog.Error("GetFriendBalance failed", "error", err)
		return nil, toConnectError(err)
	}
	views := make([]calculator.GroupView, 0, len(snaps))
	for _, snap := range snaps {
		views = append(views, groupView(snap))
	}

	summary, err := calculator.FriendBalance(userID, req.Msg.FriendID, views)
	if err != nil {
		slog.Error("GetFriendBalance failed", "error", err)
		return nil, toConnectError(err)
	}

	groups := make([]*api.GroupContribution, 0, len(summary.Groups))
	for _, g := range summary.Groups {
		groups = append(groups, &api.GroupContribution{GroupID: g.GroupID, Amount: g.Amount})
	}

	return connect.NewResponse(&api.GetFriendBalanceResponse{
		FriendID: req.Msg.FriendID,
		Net:      summary.Net,
		Groups:   groups,
	}), nil
}

// GetSettleUpPlan suggests the transfers that clear the caller's outstanding
// balances across all of their groups. Net positions are summed over the
// caller's groups only, and transfers that do not involve the caller are
// omitted: a caller whose net is zero gets no transfers even when they own
// groups with debtors, since the plan routes those debts past them.
func (s *GroupService) GetSettleUpPlan(ctx context.Context, req *connect.Request[api.GetSettleUpPlanRequest]) (*connect.Response[api.GetSettleUpPlanResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("GetSettleUpPlan request received", "user_id", userID)

	snaps, err := s.userSnapshots(ctx, userID)
	if err != nil {
		slog.Error("GetSettleUpPlan failed", "error", err)
		return nil, toConnectError(err)
	}

	net := make(map[string]decimal.Decimal)
	for _, snap := range snaps {
		res, err := calculator.Recompute(groupView(snap))
		if err != nil {
			slog.Error("GetSettleUpPlan failed", "group_id", snap.Group.ID, "error", err)
			return nil, toConnectError(err)
		}
		res.AddPositions(net)
	}

	// Other users' positions only cover groups shared with the caller.
	var transfers []*api.Transfer
	for _, t := range calculator.PlanTransfers(net) {
		if t.From != userID && t.To != userID {
			continue
		}
		transfers = append(transfers, &api.Transfer{From: t.From, To: t.To, Amount: t.Amount})
	}

	return connect.NewResponse(&api.GetSettleUpPlanResponse{
		Net:       net[userID],
		Transfers: transfers,
	}), nil
}
