package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

func newTestService(t *testing.T) (*storage.Repository, *BudgetService, core.User) {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	user, err := repo.UpsertUser(context.Background(), core.User{
		OpenID:      "user-recurring",
		Name:        "Recurring User",
		LoginMethod: "password",
		Role:        "user",
	})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	// nil AMQP client: publishing is skipped, mutations still commit.
	return repo, NewBudgetService(repo, nil), user
}

func TestProcessDueTransactionsCreatesFromTemplate(t *testing.T) {
	repo, svc, user := newTestService(t)
	ctx := context.Background()

	rt, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		UserID:      user.ID,
		Type:        core.Expense,
		Category:    "إيجار",
		Amount:      core.Money{Cents: 150000},
		Description: "monthly rent",
		Frequency:   core.Monthly,
		DayOfMonth:  5,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	processor := NewRecurringProcessor(repo, svc)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	n, err := processor.ProcessDueTransactions(ctx, now)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}

	transactions, err := repo.ListTransactionsByMonth(ctx, user.ID, 2024, 3)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(transactions))
	}
	created := transactions[0]
	if created.Category != rt.Category || created.Amount.Cents != 150000 || created.Type != core.Expense {
		t.Fatalf("unexpected transaction: %+v", created)
	}

	// Second run the same day must be a no-op.
	n, err = processor.ProcessDueTransactions(ctx, now)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run processed = %d, want 0", n)
	}
}

func TestProcessDueTransactionsSkipsInactive(t *testing.T) {
	repo, svc, user := newTestService(t)
	ctx := context.Background()

	created, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		UserID:    user.ID,
		Type:      core.Expense,
		Category:  "اشتراكات",
		Amount:    core.Money{Cents: 2500},
		Frequency: core.Daily,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	inactive := false
	if _, err := repo.UpdateRecurring(ctx, user.ID, created.ID, storage.RecurringUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	processor := NewRecurringProcessor(repo, svc)
	n, err := processor.ProcessDueTransactions(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 0 {
		t.Fatalf("processed = %d, want 0", n)
	}
}

func TestBudgetServiceMutationsWithoutAMQP(t *testing.T) {
	repo, svc, user := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		UserID:          user.ID,
		Type:            core.Income,
		Category:        "راتب",
		Amount:          core.Money{Cents: 500000},
		TransactionDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned transaction ID")
	}

	if _, err := svc.SetBudget(ctx, user.ID, "2024-04", 300000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	budget, err := repo.GetBudget(ctx, user.ID, "2024-04")
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if budget == nil || budget.Amount.Cents != 300000 {
		t.Fatalf("unexpected budget: %+v", budget)
	}

	n, err := svc.DeleteTransaction(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}
}
