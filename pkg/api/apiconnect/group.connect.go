package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "groupledger.v1.GroupService"

// Procedure paths of GroupService.
const (
	GroupServiceCreateGroupProcedure      = "/groupledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/groupledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/groupledger.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure      = "/groupledger.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure      = "/groupledger.v1.GroupService/DeleteGroup"
	GroupServiceAddMemberProcedure        = "/groupledger.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure     = "/groupledger.v1.GroupService/RemoveMember"
	GroupServiceRecomputeGroupProcedure   = "/groupledger.v1.GroupService/RecomputeGroup"
	GroupServiceGetGroupBalancesProcedure = "/groupledger.v1.GroupService/GetGroupBalances"
	GroupServiceGetFriendBalanceProcedure = "/groupledger.v1.GroupService/GetFriendBalance"
	GroupServiceGetSettleUpPlanProcedure  = "/groupledger.v1.GroupService/GetSettleUpPlan"
)

// GroupServiceHandler is implemented by the server side of GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	RecomputeGroup(context.Context, *connect.Request[api.RecomputeGroupRequest]) (*connect.Response[api.RecomputeGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetFriendBalance(context.Context, *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error)
	GetSettleUpPlan(context.Context, *connect.Request[api.GetSettleUpPlanRequest]) (*connect.Response[api.GetSettleUpPlanResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceRecomputeGroupProcedure, connect.NewUnaryHandler(GroupServiceRecomputeGroupProcedure, svc.RecomputeGroup, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(GroupServiceGetFriendBalanceProcedure, connect.NewUnaryHandler(GroupServiceGetFriendBalanceProcedure, svc.GetFriendBalance, opts...))
	mux.Handle(GroupServiceGetSettleUpPlanProcedure, connect.NewUnaryHandler(GroupServiceGetSettleUpPlanProcedure, svc.GetSettleUpPlan, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the groupledger.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	RecomputeGroup(context.Context, *connect.Request[api.RecomputeGroupRequest]) (*connect.Response[api.RecomputeGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetFriendBalance(context.Context, *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error)
	GetSettleUpPlan(context.Context, *connect.Request[api.GetSettleUpPlanRequest]) (*connect.Response[api.GetSettleUpPlanResponse], error)
}

// NewGroupServiceClient constructs a client for the groupledger.v1.GroupService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		updateGroup:      connect.NewClient[api.UpdateGroupRequest, api.UpdateGroupResponse](httpClient, baseURL+GroupServiceUpdateGroupProcedure, opts...),
		deleteGroup:      connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		addMember:        connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		removeMember:     connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		recomputeGroup:   connect.NewClient[api.RecomputeGroupRequest, api.RecomputeGroupResponse](httpClient, baseURL+GroupServiceRecomputeGroupProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getFriendBalance: connect.NewClient[api.GetFriendBalanceRequest, api.GetFriendBalanceResponse](httpClient, baseURL+GroupServiceGetFriendBalanceProcedure, opts...),
		getSettleUpPlan:  connect.NewClient[api.GetSettleUpPlanRequest, api.GetSettleUpPlanResponse](httpClient, baseURL+GroupServiceGetSettleUpPlanProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	updateGroup      *connect.Client[api.UpdateGroupRequest, api.UpdateGroupResponse]
	deleteGroup      *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	addMember        *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember     *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	recomputeGroup   *connect.Client[api.RecomputeGroupRequest, api.RecomputeGroupResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getFriendBalance *connect.Client[api.GetFriendBalanceRequest, api.GetFriendBalanceResponse]
	getSettleUpPlan  *connect.Client[api.GetSettleUpPlanRequest, api.GetSettleUpPlanResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RecomputeGroup(ctx context.Context, req *connect.Request[api.RecomputeGroupRequest]) (*connect.Response[api.RecomputeGroupResponse], error) {
	return c.recomputeGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetFriendBalance(ctx context.Context, req *connect.Request[api.GetFriendBalanceRequest]) (*connect.Response[api.GetFriendBalanceResponse], error) {
	return c.getFriendBalance.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetSettleUpPlan(ctx context.Context, req *connect.Request[api.GetSettleUpPlanRequest]) (*connect.Response[api.GetSettleUpPlanResponse], error) {
	return c.getSettleUpPlan.CallUnary(ctx, req)
}
