package api

import "github.com/shopspring/decimal"

// CreateGroupRequest is the request message for GroupService.CreateGroup.
type CreateGroupRequest struct {
	Name              string          `json:"name" validate:"required,max=100"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
	// MemberIDs are added right away. The caller owns the group and must not be listed.
	MemberIDs []string `json:"member_ids" validate:"dive,required,max=64"`
}

// CreateGroupResponse is the response message for GroupService.CreateGroup.
type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

// GetGroupRequest is the request message for GroupService.GetGroup.
type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// GetGroupResponse is the response message for GroupService.GetGroup.
type GetGroupResponse struct {
	Group *Group `json:"group"`
}

// ListGroupsRequest is the request message for GroupService.ListGroups.
type ListGroupsRequest struct{}

// ListGroupsResponse is the response message for GroupService.ListGroups.
type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest changes only the fields that are set.
type UpdateGroupRequest struct {
	GroupID           string           `json:"group_id" validate:"required"`
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	TaxRate           *decimal.Decimal `json:"tax_rate,omitempty"`
	ServiceChargeRate *decimal.Decimal `json:"service_charge_rate,omitempty"`
}

// UpdateGroupResponse is the response message for GroupService.UpdateGroup.
type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

// DeleteGroupRequest is the request message for GroupService.DeleteGroup.
type DeleteGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// DeleteGroupResponse is the response message for GroupService.DeleteGroup.
type DeleteGroupResponse struct{}

// AddMemberRequest is the request message for GroupService.AddMember.
type AddMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required,max=64"`
}

// AddMemberResponse is the response message for GroupService.AddMember.
type AddMemberResponse struct {
	Group *Group `json:"group"`
}

// RemoveMemberRequest is the request message for GroupService.RemoveMember.
type RemoveMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// RemoveMemberResponse is the response message for GroupService.RemoveMember.
type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

// RecomputeGroupRequest is the request message for GroupService.RecomputeGroup.
type RecomputeGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// RecomputeGroupResponse is the response message for GroupService.RecomputeGroup.
type RecomputeGroupResponse struct {
	Group   *Group          `json:"group"`
	Skipped []*SkippedShare `json:"skipped,omitempty"`
}

// GetGroupBalancesRequest is the request message for GroupService.GetGroupBalances.
type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// GetGroupBalancesResponse is the response message for GroupService.GetGroupBalances.
type GetGroupBalancesResponse struct {
	GroupID    string           `json:"group_id"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	Surcharge  decimal.Decimal  `json:"surcharge"`
	GroupTotal decimal.Decimal  `json:"group_total"`
	Balances   []*MemberBalance `json:"balances"`
}

// GetFriendBalanceRequest asks what the caller and a friend owe each other.
type GetFriendBalanceRequest struct {
	FriendID string `json:"friend_id" validate:"required"`
}

// GetFriendBalanceResponse.Net is positive when the friend owes the caller.
type GetFriendBalanceResponse struct {
	FriendID string               `json:"friend_id"`
	Net      decimal.Decimal      `json:"net"`
	Groups   []*GroupContribution `json:"groups"`
}

// GetSettleUpPlanRequest is the request message for GroupService.GetSettleUpPlan.
type GetSettleUpPlanRequest struct{}

// GetSettleUpPlanResponse.Net is the caller's position across all their groups,
// positive when they are owed money.
type GetSettleUpPlanResponse struct {
	Net       decimal.Decimal `json:"net"`
	Transfers []*Transfer     `json:"transfers"`
}
