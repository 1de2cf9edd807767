package calculator

import "errors"

var (
	// ErrInvalidSplit means an item has no one to split it among.
	ErrInvalidSplit = errors.New("item must be split among at least one member")
	// ErrMemberNotFound means a share, payment or flag references a user who is not a group member.
	ErrMemberNotFound = errors.New("member not found in group")
	// ErrNegativeAmount means an item or payment amount is zero or negative.
	ErrNegativeAmount = errors.New("amount must be greater than zero")
	// ErrSubCentAmount means an amount has digits below the cent.
	ErrSubCentAmount = errors.New("amount must be a whole number of cents")
	// ErrInvalidRate means a tax or service-charge percentage is negative.
	ErrInvalidRate = errors.New("surcharge rate cannot be negative")
	// ErrSameUser means a friend balance was asked between a user and themselves.
	ErrSameUser = errors.New("friend balance needs two distinct users")
)
