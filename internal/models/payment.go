package models

import "github.com/shopspring/decimal"

// Payment records money a member paid toward their balance in a group.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// UserID is the member who paid.
	UserID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// Note is an optional description for the payment.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string
}
