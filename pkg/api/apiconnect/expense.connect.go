package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "groupledger.v1.ExpenseService"

// Procedure paths of ExpenseService.
const (
	ExpenseServiceCreateItemProcedure    = "/groupledger.v1.ExpenseService/CreateItem"
	ExpenseServiceUpdateItemProcedure    = "/groupledger.v1.ExpenseService/UpdateItem"
	ExpenseServiceDeleteItemProcedure    = "/groupledger.v1.ExpenseService/DeleteItem"
	ExpenseServiceListItemsProcedure     = "/groupledger.v1.ExpenseService/ListItems"
	ExpenseServiceCreatePaymentProcedure = "/groupledger.v1.ExpenseService/CreatePayment"
	ExpenseServiceListPaymentsProcedure  = "/groupledger.v1.ExpenseService/ListPayments"
	ExpenseServiceSetPaidProcedure       = "/groupledger.v1.ExpenseService/SetPaid"
)

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CreateItem(context.Context, *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	CreatePayment(context.Context, *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	SetPaid(context.Context, *connect.Request[api.SetPaidRequest]) (*connect.Response[api.SetPaidResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateItemProcedure, connect.NewUnaryHandler(ExpenseServiceCreateItemProcedure, svc.CreateItem, opts...))
	mux.Handle(ExpenseServiceUpdateItemProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateItemProcedure, svc.UpdateItem, opts...))
	mux.Handle(ExpenseServiceDeleteItemProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteItemProcedure, svc.DeleteItem, opts...))
	mux.Handle(ExpenseServiceListItemsProcedure, connect.NewUnaryHandler(ExpenseServiceListItemsProcedure, svc.ListItems, opts...))
	mux.Handle(ExpenseServiceCreatePaymentProcedure, connect.NewUnaryHandler(ExpenseServiceCreatePaymentProcedure, svc.CreatePayment, opts...))
	mux.Handle(ExpenseServiceListPaymentsProcedure, connect.NewUnaryHandler(ExpenseServiceListPaymentsProcedure, svc.ListPayments, opts...))
	mux.Handle(ExpenseServiceSetPaidProcedure, connect.NewUnaryHandler(ExpenseServiceSetPaidProcedure, svc.SetPaid, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient is a client for the groupledger.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateItem(context.Context, *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error)
	UpdateItem(context.Context, *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	CreatePayment(context.Context, *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	SetPaid(context.Context, *connect.Request[api.SetPaidRequest]) (*connect.Response[api.SetPaidResponse], error)
}

// NewExpenseServiceClient constructs a client for the groupledger.v1.ExpenseService service.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createItem:    connect.NewClient[api.CreateItemRequest, api.CreateItemResponse](httpClient, baseURL+ExpenseServiceCreateItemProcedure, opts...),
		updateItem:    connect.NewClient[api.UpdateItemRequest, api.UpdateItemResponse](httpClient, baseURL+ExpenseServiceUpdateItemProcedure, opts...),
		deleteItem:    connect.NewClient[api.DeleteItemRequest, api.DeleteItemResponse](httpClient, baseURL+ExpenseServiceDeleteItemProcedure, opts...),
		listItems:     connect.NewClient[api.ListItemsRequest, api.ListItemsResponse](httpClient, baseURL+ExpenseServiceListItemsProcedure, opts...),
		createPayment: connect.NewClient[api.CreatePaymentRequest, api.CreatePaymentResponse](httpClient, baseURL+ExpenseServiceCreatePaymentProcedure, opts...),
		listPayments:  connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+ExpenseServiceListPaymentsProcedure, opts...),
		setPaid:       connect.NewClient[api.SetPaidRequest, api.SetPaidResponse](httpClient, baseURL+ExpenseServiceSetPaidProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createItem    *connect.Client[api.CreateItemRequest, api.CreateItemResponse]
	updateItem    *connect.Client[api.UpdateItemRequest, api.UpdateItemResponse]
	deleteItem    *connect.Client[api.DeleteItemRequest, api.DeleteItemResponse]
	listItems     *connect.Client[api.ListItemsRequest, api.ListItemsResponse]
	createPayment *connect.Client[api.CreatePaymentRequest, api.CreatePaymentResponse]
	listPayments  *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	setPaid       *connect.Client[api.SetPaidRequest, api.SetPaidResponse]
}

func (c *expenseServiceClient) CreateItem(ctx context.Context, req *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error) {
	return c.createItem.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	return c.listItems.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreatePayment(ctx context.Context, req *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	return c.createPayment.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SetPaid(ctx context.Context, req *connect.Request[api.SetPaidRequest]) (*connect.Response[api.SetPaidResponse], error) {
	return c.setPaid.CallUnary(ctx, req)
}
