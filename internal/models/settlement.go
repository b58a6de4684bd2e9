package models

// Settlement represents a direct payment between two users to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// Amount is the payment amount. Always positive.
	Amount float64 `json:"amount"`

	// Note is an optional description for the settlement.
	Note string `json:"note,omitempty"`

	// Date is the Unix timestamp the payment is dated to.
	Date int64 `json:"date"`

	// PayerID is the user who paid (debtor settling up).
	PayerID string `json:"payerId"`

	// ReceiverID is the user who received payment (creditor being paid).
	// Never equal to PayerID.
	ReceiverID string `json:"receiverId"`

	// GroupID scopes the settlement to a group. Empty means personal.
	GroupID string `json:"groupId,omitempty"`

	// RelatedExpenseIDs optionally lists the expenses this payment covers.
	// The deletion cascade trims ids from this list; a settlement whose
	// list becomes empty that way is deleted with it.
	RelatedExpenseIDs []string `json:"relatedExpenseIds,omitempty"`

	// CreatedBy is the user ID that recorded the settlement.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`
}
