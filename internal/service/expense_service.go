package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService: items, payments and
// paid flags. Item writes recompute the group's cached balances; payments
// update them incrementally.
type ExpenseService struct {
	*Core
}

// NewExpenseService creates a new ExpenseService on the shared core.
func NewExpenseService(core *Core) *ExpenseService {
	return &ExpenseService{Core: core}
}

// CreateItem adds an expense and charges the members splitting it.
func (s *ExpenseService) CreateItem(ctx context.Context, req *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error) {
	slog.Info("CreateItem request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"amount", req.Msg.Amount,
		"assigned_count", len(req.Msg.AssignedTo),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, toConnectError(err)
	}

	itemID := uuid.New().String()
	snap, err := s.mutate(ctx, req.Msg.GroupID, "item_create", func(snap *models.GroupSnapshot) error {
		if err := requireParticipant(snap, userID); err != nil {
			return err
		}
		item, err := buildItem(snap, itemID, req.Msg.Name, req.Msg.Amount, req.Msg.AssignedTo)
		if err != nil {
			return err
		}
		item.CreatedAt = time.Now().Unix()
		snap.Items = append(snap.Items, *item)
		return s.chargeItem(snap, nil, item, req.Msg.KeepPaid)
	})
	if err != nil {
		slog.Error("CreateItem failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Item created", "group_id", snap.Group.ID, "item_id", itemID, "total", snap.Group.Total)

	return connect.NewResponse(&api.CreateItemResponse{
		Item:  toAPIItem(snap.Item(itemID)),
		Group: toAPIGroup(snap),
	}), nil
}

// UpdateItem replaces an item's name, amount and split set.
func (s *ExpenseService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error) {
	slog.Info("UpdateItem request received", "group_id", req.Msg.GroupID, "item_id", req.Msg.ItemID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "item_update", func(snap *models.GroupSnapshot) error {
		if err := requireParticipant(snap, userID); err != nil {
			return err
		}
		current := snap.Item(req.Msg.ItemID)
		if current == nil {
			return fmt.Errorf("%w: item %s", storage.ErrNotFound, req.Msg.ItemID)
		}
		old := *current

		updated, err := buildItem(snap, old.ID, req.Msg.Name, req.Msg.Amount, req.Msg.AssignedTo)
		if err != nil {
			return err
		}
		updated.CreatedAt = old.CreatedAt
		*current = *updated
		return s.chargeItem(snap, &old, updated, req.Msg.KeepPaid)
	})
	if err != nil {
		slog.Error("UpdateItem failed", "group_id", req.Msg.GroupID, "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Item updated", "group_id", snap.Group.ID, "item_id", req.Msg.ItemID, "total", snap.Group.Total)

	return connect.NewResponse(&api.UpdateItemResponse{
		Item:  toAPIItem(snap.Item(req.Msg.ItemID)),
		Group: toAPIGroup(snap),
	}), nil
}

// DeleteItem removes an item and recomputes the group.
func (s *ExpenseService) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	slog.Info("DeleteItem request received", "group_id", req.Msg.GroupID, "item_id", req.Msg.ItemID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "item_delete", func(snap *models.GroupSnapshot) error {
		if err := requireParticipant(snap, userID); err != nil {
			return err
		}
		item := snap.Item(req.Msg.ItemID)
		if item == nil {
			return fmt.Errorf("%w: item %s", storage.ErrNotFound, req.Msg.ItemID)
		}

		l, err := calculator.NewLedger(groupView(snap))
		if err != nil {
			return err
		}
		stale := l.ApplyItemDelete(liveItemView(snap, item))

		kept := snap.Items[:0]
		for _, it := range snap.Items {
			if it.ID != req.Msg.ItemID {
				kept = append(kept, it)
			}
		}
		snap.Items = kept

		slog.Debug("Recomputing after item delete", "group_id", snap.Group.ID, "stale_members", len(stale))
		_, err = s.recompute(snap, "item_delete")
		return err
	})
	if err != nil {
		slog.Error("DeleteItem failed", "group_id", req.Msg.GroupID, "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Item deleted", "group_id", snap.Group.ID, "item_id", req.Msg.ItemID)

	return connect.NewResponse(&api.DeleteItemResponse{Group: toAPIGroup(snap)}), nil
}

// ListItems lists a group's items, oldest first.
func (s *ExpenseService) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.readSnapshot(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("ListItems failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	items := make([]*api.Item, 0, len(snap.Items))
	for i := range snap.Items {
		items = append(items, toAPIItem(&snap.Items[i]))
	}
	return connect.NewResponse(&api.ListItemsResponse{Items: items}), nil
}

// CreatePayment records money a member paid toward their balance. Members
// record their own payments; the owner may record one for anyone.
func (s *ExpenseService) CreatePayment(ctx context.Context, req *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	slog.Info("CreatePayment request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
		"amount", req.Msg.Amount,
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	if err := requirePositive("amount", req.Msg.Amount); err != nil {
		return nil, toConnectError(err)
	}

	payerID := req.Msg.UserID
	if payerID == "" {
		payerID = userID
	}

	payment := models.Payment{
		ID:        uuid.New().String(),
		GroupID:   req.Msg.GroupID,
		UserID:    payerID,
		Amount:    req.Msg.Amount,
		Note:      req.Msg.Note,
		CreatedAt: time.Now().Unix(),
		CreatedBy: userID,
	}
	snap, err := s.mutate(ctx, req.Msg.GroupID, "payment", func(snap *models.GroupSnapshot) error {
		if payerID != userID {
			if err := requireOwner(snap, userID); err != nil {
				return err
			}
		} else if err := requireParticipant(snap, userID); err != nil {
			return err
		}

		l, err := calculator.NewLedger(groupView(snap))
		if err != nil {
			return err
		}
		if _, err := l.ApplyPayment(payerID, payment.Amount); err != nil {
			return err
		}
		applyLedger(snap, l)
		snap.Payments = append(snap.Payments, payment)
		return nil
	})
	if err != nil {
		slog.Error("CreatePayment failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.Payment(payment.Amount)

	member := snap.Member(payerID)
	slog.Info("Payment recorded",
		"group_id", snap.Group.ID,
		"payment_id", payment.ID,
		"user_id", payerID,
		"amount_owed", member.AmountOwed,
		"is_paid", member.IsPaid,
	)

	return connect.NewResponse(&api.CreatePaymentResponse{
		Payment: toAPIPayment(&payment),
		Member:  toAPIMember(member),
		Group:   toAPIGroup(snap),
	}), nil
}

// ListPayments lists a group's payments, oldest first.
func (s *ExpenseService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.readSnapshot(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	payments := make([]*api.Payment, 0, len(snap.Payments))
	for i := range snap.Payments {
		payments = append(payments, toAPIPayment(&snap.Payments[i]))
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: payments}), nil
}

// SetPaid marks a member settled or reopens their balance. Only the owner
// can do either. Reopening recomputes the group, which settles the member
// again right away if nothing is due.
func (s *ExpenseService) SetPaid(ctx context.Context, req *connect.Request[api.SetPaidRequest]) (*connect.Response[api.SetPaidResponse], error) {
	slog.Info("SetPaid request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
		"is_paid", req.Msg.IsPaid,
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.mutate(ctx, req.Msg.GroupID, "set_paid", func(snap *models.GroupSnapshot) error {
		if err := requireOwner(snap, userID); err != nil {
			return err
		}
		l, err := calculator.NewLedger(groupView(snap))
		if err != nil {
			return err
		}
		if _, err := l.SetPaid(req.Msg.UserID, req.Msg.IsPaid); err != nil {
			return err
		}
		applyLedger(snap, l)
		if req.Msg.IsPaid {
			return nil
		}
		_, err = s.recompute(snap, "reopen")
		return err
	})
	if err != nil {
		slog.Error("SetPaid failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SetPaidResponse{
		Member: toAPIMember(snap.Member(req.Msg.UserID)),
		Group:  toAPIGroup(snap),
	}), nil
}

// buildItem resolves the split set and stores each member's equal share.
// An empty assignedTo splits the item among every member.
func buildItem(snap *models.GroupSnapshot, itemID, name string, amount decimal.Decimal, assignedTo []string) (*models.Item, error) {
	splitSet := assignedTo
	if len(splitSet) == 0 {
		splitSet = snap.MemberIDs()
	}
	for _, id := range splitSet {
		if id != snap.Group.OwnerID && snap.Member(id) == nil {
			return nil, fmt.Errorf("%w: %s", calculator.ErrMemberNotFound, id)
		}
	}

	shares, err := calculator.SplitItem(amount, splitSet)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          itemID,
		GroupID:     snap.Group.ID,
		Name:        name,
		Amount:      amount,
		Assignments: make([]models.ItemAssignment, 0, len(shares)),
	}
	for _, share := range shares {
		item.Assignments = append(item.Assignments, models.ItemAssignment{
			ItemID: itemID,
			UserID: share.UserID,
			Amount: share.Amount,
		})
	}
	return item, nil
}

// chargeItem updates cached balances for a created (old == nil) or edited
// item. Unless keepPaid is set, assigned members marked paid are reopened
// first. The ledger reports which members the edit touched; the cached
// balances themselves come from a full recompute so surcharge cents are
// allocated across the whole group.
func (s *ExpenseService) chargeItem(snap *models.GroupSnapshot, old, updated *models.Item, keepPaid bool) error {
	var reopened []string
	if !keepPaid {
		for _, a := range updated.Assignments {
			if m := snap.Member(a.UserID); m != nil && m.IsPaid {
				m.IsPaid = false
				reopened = append(reopened, a.UserID)
			}
		}
	}

	l, err := calculator.NewLedger(groupView(snap))
	if err != nil {
		return err
	}
	trigger := "item_create"
	var touched []calculator.MemberView
	if old == nil {
		touched, err = l.ApplyItemCreate(itemView(updated))
	} else {
		trigger = "item_update"
		touched, err = l.ApplyItemUpdate(liveItemView(snap, old), itemView(updated))
	}
	if err != nil {
		return err
	}

	affected := make([]string, 0, len(touched))
	for _, m := range touched {
		affected = append(affected, m.UserID)
	}
	slog.Debug("Item charged",
		"group_id", snap.Group.ID,
		"item_id", updated.ID,
		"affected", affected,
		"reopened", reopened,
	)
	_, err = s.recompute(snap, trigger)
	return err
}
