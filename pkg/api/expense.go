package api

import "github.com/shopspring/decimal"

// CreateItemRequest is the request message for ExpenseService.CreateItem.
type CreateItemRequest struct {
	GroupID string          `json:"group_id" validate:"required"`
	Name    string          `json:"name" validate:"required,max=200"`
	Amount  decimal.Decimal `json:"amount"`
	// AssignedTo lists the members splitting the item. Empty means every member.
	AssignedTo []string `json:"assigned_to" validate:"dive,required"`
	// KeepPaid leaves settled members settled. By default an assigned member
	// who is marked paid is reopened so the new debt counts.
	KeepPaid bool `json:"keep_paid,omitempty"`
}

// CreateItemResponse is the response message for ExpenseService.CreateItem.
type CreateItemResponse struct {
	Item  *Item  `json:"item"`
	Group *Group `json:"group"`
}

// UpdateItemRequest is the request message for ExpenseService.UpdateItem.
type UpdateItemRequest struct {
	GroupID    string          `json:"group_id" validate:"required"`
	ItemID     string          `json:"item_id" validate:"required"`
	Name       string          `json:"name" validate:"required,max=200"`
	Amount     decimal.Decimal `json:"amount"`
	AssignedTo []string        `json:"assigned_to" validate:"dive,required"`
	KeepPaid   bool            `json:"keep_paid,omitempty"`
}

// UpdateItemResponse is the response message for ExpenseService.UpdateItem.
type UpdateItemResponse struct {
	Item  *Item  `json:"item"`
	Group *Group `json:"group"`
}

// DeleteItemRequest is the request message for ExpenseService.DeleteItem.
type DeleteItemRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	ItemID  string `json:"item_id" validate:"required"`
}

// DeleteItemResponse is the response message for ExpenseService.DeleteItem.
type DeleteItemResponse struct {
	Group *Group `json:"group"`
}

// ListItemsRequest is the request message for ExpenseService.ListItems.
type ListItemsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// ListItemsResponse is the response message for ExpenseService.ListItems.
type ListItemsResponse struct {
	Items []*Item `json:"items"`
}

// CreatePaymentRequest is the request message for ExpenseService.CreatePayment.
type CreatePaymentRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	// UserID is the paying member. Empty means the caller.
	UserID string          `json:"user_id,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty" validate:"max=200"`
}

// CreatePaymentResponse is the response message for ExpenseService.CreatePayment.
type CreatePaymentResponse struct {
	Payment *Payment `json:"payment"`
	Member  *Member  `json:"member"`
	Group   *Group   `json:"group"`
}

// ListPaymentsRequest is the request message for ExpenseService.ListPayments.
type ListPaymentsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

// ListPaymentsResponse is the response message for ExpenseService.ListPayments.
type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

// SetPaidRequest is the request message for ExpenseService.SetPaid.
type SetPaidRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	IsPaid  bool   `json:"is_paid"`
}

// SetPaidResponse is the response message for ExpenseService.SetPaid.
type SetPaidResponse struct {
	Member *Member `json:"member"`
	Group  *Group  `json:"group"`
}
