package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mmynk/splitr/internal/calculator"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

// GroupService manages groups and their aggregated balances.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroupRequest carries the input for creating a group.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"memberIds"`
}

// CreateGroup creates a new group. The acting user is always included as
// admin; duplicate member ids are collapsed; every member id must resolve
// to an existing user.
func (s *GroupService) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*models.Group, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: group name cannot be empty", ErrInvalidInput)
	}

	memberIDs := []string{userID}
	seen := map[string]bool{userID: true}
	for _, id := range req.MemberIDs {
		if !seen[id] {
			seen[id] = true
			memberIDs = append(memberIDs, id)
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range memberIDs {
		if users[id] == nil {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
	}

	now := time.Now().Unix()
	members := make([]models.Member, len(memberIDs))
	for i, id := range memberIDs {
		role := models.RoleMember
		if id == userID {
			role = models.RoleAdmin
		}
		members[i] = models.Member{UserID: id, Role: role, JoinedAt: now}
	}

	group := &models.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Members:     members,
		CreatedBy:   userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// GroupBalancesResult is the complete financial picture of a group.
type GroupBalancesResult struct {
	Group       *models.Group              `json:"group"`
	Members     []*models.User             `json:"members"`
	Expenses    []*models.Expense          `json:"expenses"`
	Settlements []*models.Settlement       `json:"settlements"`
	Balances    []calculator.MemberBalance `json:"balances"`
}

// GetGroupBalances computes every member's net position in a group from
// its full expense and settlement history. The acting user must be a
// member.
func (s *GroupService) GetGroupBalances(ctx context.Context, groupID string) (*GroupBalancesResult, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

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
	balances := calculator.GroupBalances(memberIDs, expenses, settlements)

	users, err := s.store.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	members := make([]*models.User, 0, len(memberIDs))
	for _, id := range memberIDs {
		if u := users[id]; u != nil {
			members = append(members, u)
		}
	}

	return &GroupBalancesResult{
		Group:       group,
		Members:     members,
		Expenses:    expenses,
		Settlements: settlements,
		Balances:    balances,
	}, nil
}

// ContactsResult lists the people and groups the acting user shares
// expenses with.
type ContactsResult struct {
	Users  []*models.User  `json:"users"`
	Groups []*models.Group `json:"groups"`
}

// ListContacts returns every user the acting user shares a personal
// expense with, plus the user's groups, both name-sorted.
func (s *GroupService) ListContacts(ctx context.Context) (*ContactsResult, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	expenses, err := s.store.ListPersonalExpensesInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	contactIDs := make(map[string]bool)
	for _, e := range expenses {
		if e.PayerID != userID {
			contactIDs[e.PayerID] = true
		}
		for _, split := range e.Splits {
			if split.UserID != userID {
				contactIDs[split.UserID] = true
			}
		}
	}

	ids := make([]string, 0, len(contactIDs))
	for id := range contactIDs {
		ids = append(ids, id)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	contacts := make([]*models.User, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, u)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

	return &ContactsResult{Users: contacts, Groups: groups}, nil
}
