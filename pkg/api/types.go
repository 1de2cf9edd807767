package api

import "github.com/shopspring/decimal"

// Group is a group with its members' cached balances.
type Group struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	OwnerID           string          `json:"owner_id"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
	Total             decimal.Decimal `json:"total"`
	Members           []*Member       `json:"members"`
	CreatedAt         int64           `json:"created_at"`
}

// Member is one membership with its cached balance.
type Member struct {
	UserID      string          `json:"user_id"`
	AmountOwed  decimal.Decimal `json:"amount_owed"`
	Outstanding decimal.Decimal `json:"outstanding"`
	IsPaid      bool            `json:"is_paid"`
	JoinedAt    int64           `json:"joined_at"`
}

// Assignment is one member's share of an item.
type Assignment struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Item is a shared expense.
type Item struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Assignments []*Assignment   `json:"assignments"`
	CreatedAt   int64           `json:"created_at"`
}

// Payment is money a member paid toward their balance.
type Payment struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt int64           `json:"created_at"`
	CreatedBy string          `json:"created_by"`
}

// MemberBalance is a freshly recomputed position, broken down.
type MemberBalance struct {
	UserID      string          `json:"user_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Due         decimal.Decimal `json:"due"`
	Paid        decimal.Decimal `json:"paid"`
	AmountOwed  decimal.Decimal `json:"amount_owed"`
	Outstanding decimal.Decimal `json:"outstanding"`
	IsPaid      bool            `json:"is_paid"`
}

// SkippedShare is a share or payment that pointed at a departed member.
type SkippedShare struct {
	ItemID string          `json:"item_id,omitempty"`
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupContribution is one group's part of a friend balance.
type GroupContribution struct {
	GroupID string          `json:"group_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// Transfer is a suggested payment that settles debts.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
