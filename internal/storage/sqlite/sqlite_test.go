package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	carol := createTestUser(t, store, "carol")

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		if alice.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if alice.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil user, got %+v", user)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUsersByIDs omits missing users", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{alice.ID, "nonexistent-id", bob.ID})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("Expected 2 users, got %d", len(users))
		}
		if users[alice.ID] == nil || users[alice.ID].Name != "alice" {
			t.Errorf("alice missing or wrong: %+v", users[alice.ID])
		}
	})

	var group *models.Group
	t.Run("CreateGroup persists members with roles", func(t *testing.T) {
		group = &models.Group{
			Name:      "Trip",
			CreatedBy: alice.ID,
			Members: []models.Member{
				{UserID: alice.ID, Role: models.RoleAdmin},
				{UserID: bob.ID, Role: models.RoleMember},
				{UserID: carol.ID, Role: models.RoleMember},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(retrieved.Members) != 3 {
			t.Errorf("Members count mismatch: got %d, want 3", len(retrieved.Members))
		}
		if !retrieved.HasMember(bob.ID) {
			t.Error("Expected bob to be a member")
		}
	})

	t.Run("ListGroupsForUser only lists memberships", func(t *testing.T) {
		dave := createTestUser(t, store, "dave")
		groups, err := store.ListGroupsForUser(ctx, dave.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("Expected no groups for dave, got %d", len(groups))
		}

		groups, err = store.ListGroupsForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("Expected bob in one group %s, got %+v", group.ID, groups)
		}
	})

	var groupExpense *models.Expense
	t.Run("CreateExpense persists splits and defaults category", func(t *testing.T) {
		groupExpense = &models.Expense{
			Description: "Dinner",
			Amount:      90,
			Date:        1700000000,
			PayerID:     alice.ID,
			SplitType:   models.SplitEqual,
			GroupID:     group.ID,
			CreatedBy:   alice.ID,
			Splits: []models.Split{
				{UserID: alice.ID, Amount: 30, Percentage: 33.33, Paid: true},
				{UserID: bob.ID, Amount: 30, Percentage: 33.33},
				{UserID: carol.ID, Amount: 30, Percentage: 33.33},
			},
		}
		if err := store.CreateExpense(ctx, groupExpense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		retrieved, err := store.GetExpense(ctx, groupExpense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if retrieved.Category != "Other" {
			t.Errorf("Category = %q, want default Other", retrieved.Category)
		}
		if len(retrieved.Splits) != 3 {
			t.Errorf("Splits count mismatch: got %d, want 3", len(retrieved.Splits))
		}
		paid := 0
		for _, s := range retrieved.Splits {
			if s.Paid {
				paid++
			}
		}
		if paid != 1 {
			t.Errorf("Expected exactly 1 paid split, got %d", paid)
		}
	})

	t.Run("ListGroupExpenses scoped to group", func(t *testing.T) {
		expenses, err := store.ListGroupExpenses(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupExpenses failed: %v", err)
		}
		if len(expenses) != 1 || expenses[0].ID != groupExpense.ID {
			t.Errorf("Expected the one group expense, got %+v", expenses)
		}
	})

	var personalExpense *models.Expense
	t.Run("personal expense queries", func(t *testing.T) {
		personalExpense = &models.Expense{
			Description: "Coffee",
			Amount:      10,
			Date:        1700000100,
			PayerID:     alice.ID,
			SplitType:   models.SplitEqual,
			CreatedBy:   alice.ID,
			Splits: []models.Split{
				{UserID: alice.ID, Amount: 5, Percentage: 50, Paid: true},
				{UserID: bob.ID, Amount: 5, Percentage: 50},
			},
		}
		if err := store.CreateExpense(ctx, personalExpense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		byPayer, err := store.ListPersonalExpensesByPayer(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListPersonalExpensesByPayer failed: %v", err)
		}
		if len(byPayer) != 1 || byPayer[0].ID != personalExpense.ID {
			t.Errorf("Expected only the personal expense, got %+v", byPayer)
		}

		involving, err := store.ListPersonalExpensesInvolving(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListPersonalExpensesInvolving failed: %v", err)
		}
		if len(involving) != 1 || involving[0].ID != personalExpense.ID {
			t.Errorf("Expected bob's split expense, got %+v", involving)
		}
		if len(involving[0].Splits) != 2 {
			t.Errorf("Expected splits loaded, got %+v", involving[0].Splits)
		}
	})

	var settlementA, settlementB *models.Settlement
	t.Run("CreateSettlement persists related expense ids", func(t *testing.T) {
		settlementA = &models.Settlement{
			Amount:            30,
			PayerID:           bob.ID,
			ReceiverID:        alice.ID,
			GroupID:           group.ID,
			CreatedBy:         bob.ID,
			RelatedExpenseIDs: []string{groupExpense.ID},
		}
		if err := store.CreateSettlement(ctx, settlementA); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if settlementA.Date == 0 {
			t.Error("Expected Date to default to CreatedAt")
		}

		settlementB = &models.Settlement{
			Amount:            5,
			Note:              "coffee money",
			PayerID:           bob.ID,
			ReceiverID:        alice.ID,
			CreatedBy:         bob.ID,
			RelatedExpenseIDs: []string{groupExpense.ID, personalExpense.ID},
		}
		if err := store.CreateSettlement(ctx, settlementB); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		retrieved, err := store.GetSettlement(ctx, settlementB.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if retrieved.Note != "coffee money" {
			t.Errorf("Note = %q, want coffee money", retrieved.Note)
		}
		if len(retrieved.RelatedExpenseIDs) != 2 {
			t.Errorf("RelatedExpenseIDs count mismatch: got %d, want 2", len(retrieved.RelatedExpenseIDs))
		}
	})

	t.Run("ListSettlementsReferencingExpense", func(t *testing.T) {
		refs, err := store.ListSettlementsReferencingExpense(ctx, groupExpense.ID)
		if err != nil {
			t.Fatalf("ListSettlementsReferencingExpense failed: %v", err)
		}
		if len(refs) != 2 {
			t.Errorf("Expected 2 referencing settlements, got %d", len(refs))
		}

		refs, err = store.ListSettlementsReferencingExpense(ctx, personalExpense.ID)
		if err != nil {
			t.Fatalf("ListSettlementsReferencingExpense failed: %v", err)
		}
		if len(refs) != 1 || refs[0].ID != settlementB.ID {
			t.Errorf("Expected only settlementB, got %+v", refs)
		}
	})

	t.Run("UpdateSettlementRelatedExpenses replaces the list", func(t *testing.T) {
		if err := store.UpdateSettlementRelatedExpenses(ctx, settlementB.ID, []string{personalExpense.ID}); err != nil {
			t.Fatalf("UpdateSettlementRelatedExpenses failed: %v", err)
		}
		retrieved, err := store.GetSettlement(ctx, settlementB.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if len(retrieved.RelatedExpenseIDs) != 1 || retrieved.RelatedExpenseIDs[0] != personalExpense.ID {
			t.Errorf("RelatedExpenseIDs = %v, want only personal expense", retrieved.RelatedExpenseIDs)
		}
	})

	t.Run("ListPersonalSettlementsBetween matches either direction", func(t *testing.T) {
		settlements, err := store.ListPersonalSettlementsBetween(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("ListPersonalSettlementsBetween failed: %v", err)
		}
		// settlementA is group-scoped so only settlementB qualifies.
		if len(settlements) != 1 || settlements[0].ID != settlementB.ID {
			t.Errorf("Expected only settlementB, got %+v", settlements)
		}
	})

	t.Run("ListGroupSettlements scoped to group", func(t *testing.T) {
		settlements, err := store.ListGroupSettlements(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupSettlements failed: %v", err)
		}
		if len(settlements) != 1 || settlements[0].ID != settlementA.ID {
			t.Errorf("Expected only settlementA, got %+v", settlements)
		}
	})

	t.Run("DeleteSettlement removes it", func(t *testing.T) {
		if err := store.DeleteSettlement(ctx, settlementA.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, settlementA.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteSettlement(ctx, settlementA.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on double delete, got %v", err)
		}
	})

	t.Run("DeleteExpense removes expense and splits", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, personalExpense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, personalExpense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown expense, got %v", err)
		}
	})
}
