package models

import "github.com/shopspring/decimal"

// Group is a set of members who owe their share of shared expenses to the owner.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// OwnerID is the user who fronts the expenses. The owner never owes
	// themselves and is not stored as a Member.
	OwnerID string

	// TaxRate is a percentage applied on top of item amounts (10 means 10%).
	TaxRate decimal.Decimal

	// ServiceChargeRate is a percentage applied on top of item amounts.
	ServiceChargeRate decimal.Decimal

	// Total is the cached sum of AmountOwed over members that are not paid.
	Total decimal.Decimal

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a user's membership in a group. Unique per (GroupID, UserID).
type Member struct {
	GroupID string
	UserID  string

	// AmountOwed is what the member owes the owner. Negative means the member
	// has paid more than their share.
	AmountOwed decimal.Decimal

	// IsPaid marks the member as settled. It hides AmountOwed from the group
	// total without zeroing it.
	IsPaid bool

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64
}
