package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// SettlementService records settlements and computes the balances that
// feed the settlement form.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateSettlementRequest carries the input for recording a settlement.
type CreateSettlementRequest struct {
	Amount            float64  `json:"amount"`
	Note              string   `json:"note"`
	PayerID           string   `json:"payerId"`
	ReceiverID        string   `json:"receiverId"`
	GroupID           string   `json:"groupId"`
	RelatedExpenseIDs []string `json:"relatedExpenseIds"`
}

// CreateSettlement validates and persists a direct payment between two
// users. Checks run in order: positive amount, distinct parties, acting
// user is one of the parties, and for group-scoped settlements both
// parties are members. Nothing is persisted on failure.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *CreateSettlementRequest) (*models.Settlement, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: settlement amount must be greater than zero", ErrInvalidInput)
	}
	if req.PayerID == req.ReceiverID {
		return nil, fmt.Errorf("%w: payer and receiver cannot be the same user", ErrInvalidInput)
	}
	if userID != req.PayerID && userID != req.ReceiverID {
		return nil, fmt.Errorf("%w: you must be the payer or receiver to create a settlement", ErrNotAuthorized)
	}

	if req.GroupID != "" {
		group, err := s.store.GetGroup(ctx, req.GroupID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("group %s: %w", req.GroupID, ErrNotFound)
			}
			return nil, err
		}
		if !group.HasMember(req.PayerID) || !group.HasMember(req.ReceiverID) {
			return nil, fmt.Errorf("%w: both users must be members of the group", ErrInvalidInput)
		}
	}

	settlement := &models.Settlement{
		Amount:            req.Amount,
		Note:              req.Note,
		Date:              time.Now().Unix(),
		PayerID:           req.PayerID,
		ReceiverID:        req.ReceiverID,
		GroupID:           req.GroupID,
		RelatedExpenseIDs: req.RelatedExpenseIDs,
		CreatedBy:         userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "error", err)
		return nil, err
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"amount", settlement.Amount,
		"payer_id", settlement.PayerID,
		"receiver_id", settlement.ReceiverID,
	)
	return settlement, nil
}

// SettlementScope selects whose balances the settlement form shows.
// It is a sealed sum type: exactly UserScope or GroupScope.
type SettlementScope interface {
	settlementScope()
}

// UserScope asks for the clamped two-party balance against one user.
type UserScope struct {
	UserID string
}

// GroupScope asks for the clamped balances against every other member of
// a group.
type GroupScope struct {
	GroupID string
}

func (UserScope) settlementScope()  {}
func (GroupScope) settlementScope() {}

// CounterpartContext is one counterpart's clamped owed/owing balance with
// their user details attached.
type CounterpartContext struct {
	User       *models.User `json:"user"`
	YouAreOwed float64      `json:"youAreOwed"`
	YouOwe     float64      `json:"youOwe"`
	NetBalance float64      `json:"netBalance"`
}

// SettlementContext is the balance summary feeding the settlement form.
// Group is set only for GroupScope queries.
type SettlementContext struct {
	Group        *models.Group        `json:"group,omitempty"`
	Counterparts []CounterpartContext `json:"counterparts"`
}

// GetSettlementContext computes, per counterpart, the amounts owed to and
// owed by the acting user with settlements already subtracted, each side
// floored at zero (see calculator.CounterpartBalance).
func (s *SettlementService) GetSettlementContext(ctx context.Context, scope SettlementScope) (*SettlementContext, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	switch sc := scope.(type) {
	case UserScope:
		return s.userContext(ctx, userID, sc.UserID)
	case GroupScope:
		return s.groupContext(ctx, userID, sc.GroupID)
	default:
		return nil, fmt.Errorf("%w: unknown settlement scope %T", ErrInvalidInput, scope)
	}
}

func (s *SettlementService) userContext(ctx context.Context, userID, otherID string) (*SettlementContext, error) {
	if userID == otherID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidInput)
	}

	other, err := s.store.GetUserByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", otherID, ErrNotFound)
		}
		return nil, err
	}

	myPaid, err := s.store.ListPersonalExpensesByPayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirPaid, err := s.store.ListPersonalExpensesByPayer(ctx, otherID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListPersonalSettlementsBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	b := calculator.PairSettlementBalance(userID, otherID, append(myPaid, theirPaid...), settlements)
	return &SettlementContext{
		Counterparts: []CounterpartContext{{
			User:       other,
			YouAreOwed: b.YouAreOwed,
			YouOwe:     b.YouOwe,
			NetBalance: b.Net(),
		}},
	}, nil
}

func (s *SettlementService) groupContext(ctx context.Context, userID, groupID string) (*SettlementContext, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
		}
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: you are not a member of this group", ErrNotAuthorized)
	}

	expenses, err := s.store.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListGroupSettlements(ctx, groupID)
	if err != nil {
		return nil, err
	}

	memberIDs := group.MemberIDs()
	balances := calculator.GroupSettlementBalances(userID, memberIDs, expenses, settlements)

	users, err := s.store.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	result := &SettlementContext{Group: group}
	for _, b := range balances {
		result.Counterparts = append(result.Counterparts, CounterpartContext{
			User:       users[b.UserID],
			YouAreOwed: b.YouAreOwed,
			YouOwe:     b.YouOwe,
			NetBalance: b.Net(),
		})
	}
	return result, nil
}
