package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// ExpenseService records, queries, and deletes expenses.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpenseRequest carries the input for recording an expense.
type CreateExpenseRequest struct {
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	Category    string         `json:"category"`
	Date        int64          `json:"date"`
	PayerID     string         `json:"payerId"`
	SplitType   models.SplitType `json:"splitType"`
	Splits      []models.Split `json:"splits"`
	GroupID     string         `json:"groupId"`
}

// PreviewSplitsRequest carries the input for a split allocation preview.
type PreviewSplitsRequest struct {
	Amount         float64          `json:"amount"`
	SplitType      models.SplitType `json:"splitType"`
	ParticipantIDs []string         `json:"participantIds"`
	PayerID        string           `json:"payerId"`
	// Shares holds percentages for percentage splits, amounts for exact
	// splits, keyed by participant id. Missing participants default to
	// an even share.
	Shares map[string]float64 `json:"shares"`
}

// PreviewSplits computes participant shares without persisting anything.
// Callers use it to build the splits they pass to CreateExpense.
func (s *ExpenseService) PreviewSplits(ctx context.Context, req *PreviewSplitsRequest) ([]models.Split, error) {
	splits, err := calculator.Allocate(req.SplitType, req.Amount, req.ParticipantIDs, req.PayerID, req.Shares)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return splits, nil
}

// CreateExpense validates and persists a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*models.Expense, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !req.SplitType.Valid() {
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidInput, req.SplitType)
	}
	if len(req.Splits) == 0 {
		return nil, fmt.Errorf("%w: at least one split required", ErrInvalidInput)
	}
	if req.PayerID == "" {
		return nil, fmt.Errorf("%w: payer required", ErrInvalidInput)
	}

	if req.GroupID != "" {
		group, err := s.store.GetGroup(ctx, req.GroupID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("group %s: %w", req.GroupID, ErrNotFound)
			}
			return nil, err
		}
		if !group.HasMember(userID) {
			return nil, fmt.Errorf("%w: you are not a member of this group", ErrNotAuthorized)
		}
		if !group.HasMember(req.PayerID) {
			return nil, fmt.Errorf("%w: payer is not a member of this group", ErrNotAuthorized)
		}
		for _, split := range req.Splits {
			if !group.HasMember(split.UserID) {
				return nil, fmt.Errorf("%w: split participant %s is not a group member", ErrInvalidInput, split.UserID)
			}
		}
	}

	if err := calculator.ValidateSplitTotal(req.Splits, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	date := req.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	expense := &models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
		PayerID:     req.PayerID,
		SplitType:   req.SplitType,
		Splits:      req.Splits,
		GroupID:     req.GroupID,
		CreatedBy:   userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, err
	}

	slog.Info("Expense recorded", "expense_id", expense.ID, "amount", expense.Amount, "group_id", expense.GroupID)
	return expense, nil
}

// PairBalanceResult is the outcome of a two-party balance query.
type PairBalanceResult struct {
	OtherUser *models.User `json:"otherUser"`
	// Balance is positive when the counterpart owes the caller.
	Balance     float64              `json:"balance"`
	Expenses    []*models.Expense    `json:"expenses"`
	Settlements []*models.Settlement `json:"settlements"`
}

// GetPairBalance computes the signed running balance between the acting
// user and otherUserID from their personal records, with the record
// history, newest first.
func (s *ExpenseService) GetPairBalance(ctx context.Context, otherUserID string) (*PairBalanceResult, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if userID == otherUserID {
		return nil, fmt.Errorf("%w: cannot get balance against yourself", ErrInvalidInput)
	}

	other, err := s.store.GetUserByID(ctx, otherUserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", otherUserID, ErrNotFound)
		}
		return nil, err
	}

	myPaid, err := s.store.ListPersonalExpensesByPayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirPaid, err := s.store.ListPersonalExpensesByPayer(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	var expenses []*models.Expense
	for _, e := range append(myPaid, theirPaid...) {
		if calculator.ExpenseInvolves(e, userID) && calculator.ExpenseInvolves(e, otherUserID) {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date > expenses[j].Date })

	settlements, err := s.store.ListPersonalSettlementsBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	return &PairBalanceResult{
		OtherUser:   other,
		Balance:     calculator.PairBalance(userID, otherUserID, expenses, settlements),
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}

// DeleteExpense removes an expense after cascading through every
// settlement that references it: the expense id is trimmed from each
// settlement's related list, and settlements whose list empties are
// deleted.
//
// The cascade is best-effort per settlement and safely retryable: a
// failure on one settlement does not stop the others, but any failure
// keeps the expense in place so a retry can finish the job. Settlements
// already trimmed by an earlier attempt no longer match the reference
// query and are skipped naturally.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return ErrUnauthenticated
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
		}
		return err
	}

	if expense.CreatedBy != userID && expense.PayerID != userID {
		return fmt.Errorf("%w: only the expense's creator or payer can delete it", ErrNotAuthorized)
	}

	referencing, err := s.store.ListSettlementsReferencingExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	var cascadeErrs []error
	for _, settlement := range referencing {
		remaining := make([]string, 0, len(settlement.RelatedExpenseIDs))
		for _, id := range settlement.RelatedExpenseIDs {
			if id != expenseID {
				remaining = append(remaining, id)
			}
		}

		if len(remaining) == 0 {
			err = s.store.DeleteSettlement(ctx, settlement.ID)
			// A settlement already deleted by a previous attempt is fine.
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				cascadeErrs = append(cascadeErrs, fmt.Errorf("settlement %s: %w", settlement.ID, err))
			}
		} else {
			if err := s.store.UpdateSettlementRelatedExpenses(ctx, settlement.ID, remaining); err != nil {
				cascadeErrs = append(cascadeErrs, fmt.Errorf("settlement %s: %w", settlement.ID, err))
			}
		}
	}

	if len(cascadeErrs) > 0 {
		// Leave the expense in place; re-running the delete picks up
		// where this attempt stopped.
		slog.Warn("DeleteExpense cascade incomplete", "expense_id", expenseID, "failures", len(cascadeErrs))
		return fmt.Errorf("deletion cascade incomplete for expense %s: %w", expenseID, errors.Join(cascadeErrs...))
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "settlements_touched", len(referencing))
	return nil
}
