package models

import "github.com/shopspring/decimal"

// Item is a shared expense in a group.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	GroupID string

	// Name describes the expense (e.g., "Groceries", "Cabin deposit").
	Name string

	// Amount is the pre-surcharge price. Always positive.
	Amount decimal.Decimal

	// Assignments are the members splitting this item and their equal shares.
	// They are computed when the item is saved and replaced on edit.
	Assignments []ItemAssignment

	// CreatedAt is the Unix timestamp when the item was created.
	CreatedAt int64
}

// ItemAssignment is one member's share of an item.
type ItemAssignment struct {
	ItemID string
	UserID string
	Amount decimal.Decimal
}

// UserIDs returns the assigned users in stored order.
func (i *Item) UserIDs() []string {
	ids := make([]string, 0, len(i.Assignments))
	for _, a := range i.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}
