package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Category == "" {
		expense.Category = "Other"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID interface{}
	if expense.GroupID != "" {
		groupID = expense.GroupID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, date, payer_id, split_type, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount, expense.Category, expense.Date,
		expense.PayerID, string(expense.SplitType), groupID, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, percentage, paid) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.UserID, split.Amount, split.Percentage, split.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.scanExpenseRow(s.db.QueryRowContext(ctx,
		`SELECT id, description, amount, category, date, payer_id, split_type, group_id, created_by, created_at
		 FROM expenses WHERE id = ?`, expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}

	return expense, nil
}

// DeleteExpense removes an expense; splits go with it via foreign key.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListGroupExpenses retrieves all expenses for a group, newest first.
func (s *SQLiteStore) ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id, description, amount, category, date, payer_id, split_type, group_id, created_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY date DESC`, groupID)
}

// ListPersonalExpensesByPayer retrieves all groupless expenses paid by the user.
func (s *SQLiteStore) ListPersonalExpensesByPayer(ctx context.Context, payerID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id, description, amount, category, date, payer_id, split_type, group_id, created_by, created_at
		 FROM expenses WHERE group_id IS NULL AND payer_id = ? ORDER BY date DESC`, payerID)
}

// ListPersonalExpensesInvolving retrieves all groupless expenses where the
// user is the payer or holds a split.
func (s *SQLiteStore) ListPersonalExpensesInvolving(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT DISTINCT e.id, e.description, e.amount, e.category, e.date, e.payer_id, e.split_type, e.group_id, e.created_by, e.created_at
		 FROM expenses e
		 LEFT JOIN expense_splits es ON es.expense_id = e.id
		 WHERE e.group_id IS NULL AND (e.payer_id = ? OR es.user_id = ?)
		 ORDER BY e.date DESC`, userID, userID)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := s.scanExpenseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (s *SQLiteStore) scanExpenseRow(row interface{ Scan(...interface{}) error }) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	var splitType string
	err := row.Scan(&expense.ID, &expense.Description, &expense.Amount, &expense.Category,
		&expense.Date, &expense.PayerID, &splitType, &groupID, &expense.CreatedBy, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}
	expense.SplitType = models.SplitType(splitType)
	if groupID.Valid {
		expense.GroupID = groupID.String
	}
	return expense, nil
}

// loadSplits fetches splits for the given expenses in one query.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	args := make([]interface{}, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		args[i] = e.ID
	}

	query := `
		SELECT expense_id, user_id, amount, percentage, paid
		FROM expense_splits
		WHERE expense_id IN (?` + repeatPlaceholder(len(expenses)-1) + `)
		ORDER BY expense_id, user_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var split models.Split
		if err := rows.Scan(&expenseID, &split.UserID, &split.Amount, &split.Percentage, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	return nil
}
