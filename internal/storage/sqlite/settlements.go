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

// CreateSettlement persists a new settlement and its related expense ids.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = settlement.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var note interface{}
	if settlement.Note != "" {
		note = settlement.Note
	}
	var groupID interface{}
	if settlement.GroupID != "" {
		groupID = settlement.GroupID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, amount, note, date, payer_id, receiver_id, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Amount, note, settlement.Date,
		settlement.PayerID, settlement.ReceiverID, groupID,
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, expenseID := range settlement.RelatedExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO settlement_related_expenses (settlement_id, expense_id) VALUES (?, ?)",
			settlement.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert related expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlementRow(s.db.QueryRowContext(ctx,
		`SELECT id, amount, note, date, payer_id, receiver_id, group_id, created_by, created_at
		 FROM settlements WHERE id = ?`, settlementID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := s.loadRelatedExpenses(ctx, []*models.Settlement{settlement}); err != nil {
		return nil, err
	}

	return settlement, nil
}

// ListGroupSettlements retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListGroupSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, amount, note, date, payer_id, receiver_id, group_id, created_by, created_at
		 FROM settlements WHERE group_id = ? ORDER BY date DESC`, groupID)
}

// ListPersonalSettlementsBetween retrieves all groupless settlements with
// the two users as payer and receiver in either direction, newest first.
func (s *SQLiteStore) ListPersonalSettlementsBetween(ctx context.Context, userID, otherID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, amount, note, date, payer_id, receiver_id, group_id, created_by, created_at
		 FROM settlements
		 WHERE group_id IS NULL
		   AND ((payer_id = ? AND receiver_id = ?) OR (payer_id = ? AND receiver_id = ?))
		 ORDER BY date DESC`,
		userID, otherID, otherID, userID)
}

// ListSettlementsReferencingExpense retrieves every settlement whose
// related expense ids include the given expense.
func (s *SQLiteStore) ListSettlementsReferencingExpense(ctx context.Context, expenseID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT st.id, st.amount, st.note, st.date, st.payer_id, st.receiver_id, st.group_id, st.created_by, st.created_at
		 FROM settlements st
		 JOIN settlement_related_expenses sre ON sre.settlement_id = st.id
		 WHERE sre.expense_id = ?
		 ORDER BY st.date DESC`, expenseID)
}

// UpdateSettlementRelatedExpenses replaces a settlement's related expense
// id list.
func (s *SQLiteStore) UpdateSettlementRelatedExpenses(ctx context.Context, settlementID string, expenseIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlement_related_expenses WHERE settlement_id = ?", settlementID); err != nil {
		return fmt.Errorf("failed to clear related expenses: %w", err)
	}

	for _, expenseID := range expenseIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settlement_related_expenses (settlement_id, expense_id) VALUES (?, ?)",
			settlementID, expenseID); err != nil {
			return fmt.Errorf("failed to insert related expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) listSettlements(ctx context.Context, query string, args ...interface{}) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	if err := s.loadRelatedExpenses(ctx, settlements); err != nil {
		return nil, err
	}

	return settlements, nil
}

func scanSettlementRow(row interface{ Scan(...interface{}) error }) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var note, groupID sql.NullString
	err := row.Scan(&settlement.ID, &settlement.Amount, &note, &settlement.Date,
		&settlement.PayerID, &settlement.ReceiverID, &groupID,
		&settlement.CreatedBy, &settlement.CreatedAt)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		settlement.Note = note.String
	}
	if groupID.Valid {
		settlement.GroupID = groupID.String
	}
	return settlement, nil
}

// loadRelatedExpenses fetches related expense ids for the given settlements
// in one query.
func (s *SQLiteStore) loadRelatedExpenses(ctx context.Context, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	byID := make(map[string]*models.Settlement, len(settlements))
	args := make([]interface{}, len(settlements))
	for i, st := range settlements {
		byID[st.ID] = st
		args[i] = st.ID
	}

	query := `
		SELECT settlement_id, expense_id
		FROM settlement_related_expenses
		WHERE settlement_id IN (?` + repeatPlaceholder(len(settlements)-1) + `)
		ORDER BY settlement_id, expense_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get related expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var settlementID, expenseID string
		if err := rows.Scan(&settlementID, &expenseID); err != nil {
			return fmt.Errorf("failed to scan related expense: %w", err)
		}
		if st, ok := byID[settlementID]; ok {
			st.RelatedExpenseIDs = append(st.RelatedExpenseIDs, expenseID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate related expenses: %w", err)
	}

	return nil
}
