package models

// SplitType selects how an expense amount is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly among all participants.
	SplitEqual SplitType = "equal"

	// SplitPercentage divides the amount by caller-supplied percentages.
	SplitPercentage SplitType = "percentage"

	// SplitExact uses caller-supplied per-participant amounts directly.
	SplitExact SplitType = "exact"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	}
	return false
}

// Split is one participant's share of an expense.
type Split struct {
	// UserID references the participant.
	UserID string `json:"userId"`

	// Amount is this participant's share of the expense amount.
	Amount float64 `json:"amount"`

	// Percentage is the share expressed as a percentage of the total,
	// kept for display. For exact splits it is derived from the amount.
	Percentage float64 `json:"percentage"`

	// Paid marks a share that needs no settling. At creation only the
	// payer's own entry is marked paid; balance calculations skip paid
	// splits.
	Paid bool `json:"paid"`
}

// Expense represents a paid amount split among participants.
// Immutable after creation except for deletion.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Description is the human-readable label (e.g. "Dinner").
	Description string `json:"description"`

	// Amount is the total expense amount. Always positive.
	Amount float64 `json:"amount"`

	// Category is an optional label; defaults to "Other".
	Category string `json:"category"`

	// Date is the Unix timestamp the expense is dated to.
	Date int64 `json:"date"`

	// PayerID is the user who paid. The payer need not appear in Splits.
	PayerID string `json:"payerId"`

	// SplitType records how Splits were produced.
	SplitType SplitType `json:"splitType"`

	// Splits are the participant shares. Their amounts sum to Amount
	// within a 0.01 tolerance.
	Splits []Split `json:"splits"`

	// GroupID scopes the expense to a group. Empty means a personal
	// (one-on-one) expense.
	GroupID string `json:"groupId,omitempty"`

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`
}
