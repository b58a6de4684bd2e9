// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitr/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for record storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Single-record writes are atomic; the store does not provide multi-record
// transactions across calls. Balance queries read whole record sets and
// never mutate.
type Store interface {
	// CreateUser inserts a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when
	// no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by id. Missing users
	// are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a new group with its members.
	// The group.ID and CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members. Returns ErrNotFound
	// when absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser retrieves every group the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// CreateExpense persists a new expense with its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits. Returns
	// ErrNotFound when absent.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListGroupExpenses retrieves all expenses scoped to a group.
	ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListPersonalExpensesByPayer retrieves all groupless expenses paid
	// by the given user.
	ListPersonalExpensesByPayer(ctx context.Context, payerID string) ([]*models.Expense, error)

	// ListPersonalExpensesInvolving retrieves all groupless expenses
	// where the user is the payer or appears in the splits.
	ListPersonalExpensesInvolving(ctx context.Context, userID string) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement. Returns ErrNotFound when
	// absent.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListGroupSettlements retrieves all settlements scoped to a group.
	ListGroupSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListPersonalSettlementsBetween retrieves all groupless settlements
	// with the two users as payer/receiver in either direction.
	ListPersonalSettlementsBetween(ctx context.Context, userID, otherID string) ([]*models.Settlement, error)

	// ListSettlementsReferencingExpense retrieves every settlement whose
	// related expense ids include the given expense.
	ListSettlementsReferencingExpense(ctx context.Context, expenseID string) ([]*models.Settlement, error)

	// UpdateSettlementRelatedExpenses replaces a settlement's related
	// expense id list. Only the deletion cascade calls this.
	UpdateSettlementRelatedExpenses(ctx context.Context, settlementID string, expenseIDs []string) error

	// DeleteSettlement removes a settlement.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
