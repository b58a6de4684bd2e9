package service

import "errors"

// Error taxonomy for the operation layer. Every failure wraps exactly one
// of these sentinels so transports can map them without string matching.
// All validation and authorization checks run before any write; on failure
// nothing is persisted.
var (
	// ErrInvalidInput marks malformed or inconsistent input: non-positive
	// amounts, split totals not matching the expense amount, identical
	// payer and receiver.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAuthorized marks an acting identity without standing: not a
	// group member, not a settlement party, not the expense's creator or
	// payer.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound marks a referenced user, group, expense, or settlement
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated marks a request with no acting identity.
	ErrUnauthenticated = errors.New("authentication required")
)
