package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

// RecurringProcessor materializes due recurring transaction templates into
// real transactions. It runs across all users; each created transaction is
// scoped to the template's owner.
type RecurringProcessor struct {
	storage       *storage.Repository
	budgetService *BudgetService
}

func NewRecurringProcessor(storage *storage.Repository, budgetService *BudgetService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:       storage,
		budgetService: budgetService,
	}
}

// ProcessDueTransactions checks every active template and creates a
// transaction for each one that is due. It returns the number created.
// A failure on one template logs and moves on; the next run retries it.
func (p *RecurringProcessor) ProcessDueTransactions(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.budgetService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.storage.ListAllActiveRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, rt := range templates {
		checker, err := GetDuenessChecker(rt.Frequency)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping recurring transaction with unknown frequency",
				"id", rt.ID,
				"frequency", rt.Frequency,
				"error", err)
			continue
		}

		if !checker.IsDue(rt, now) {
			continue
		}

		transaction := core.Transaction{
			UserID:          rt.UserID,
			Type:            rt.Type,
			Category:        rt.Category,
			Amount:          rt.Amount,
			Description:     rt.Description,
			Person:          rt.Person,
			TransactionDate: now,
		}

		if _, err := p.budgetService.CreateTransaction(ctx, transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", rt.ID,
				"user_id", rt.UserID,
				"error", err)
			continue
		}

		if err := p.storage.SetRecurringLastExecuted(ctx, rt.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"recurring_id", rt.ID,
				"error", err)
			// Transaction was created; leaving the stamp behind risks a
			// duplicate next run, which the dueness check limits to one.
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", rt.ID,
			"user_id", rt.UserID,
			"amount_cents", rt.Amount.Cents,
			"frequency", rt.Frequency)
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processedCount,
		"total_checked", len(templates))

	return processedCount, nil
}
