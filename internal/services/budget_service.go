package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmedsps3/personal-budget-app/internal/amqp"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

// BudgetService orchestrates mutations across SQLite and AMQP: every write
// lands in storage first, then a backup request is published so the backup
// worker can refresh the user's Drive snapshot. Publish failures never fail
// the request; the periodic scan in the worker catches up.
type BudgetService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewBudgetService(storage *storage.Repository, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *BudgetService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"category", created.Category,
		"amount_cents", created.Amount.Cents)

	s.requestBackup(ctx, created.UserID, "transaction.create")
	return created, nil
}

func (s *BudgetService) UpdateTransaction(ctx context.Context, userID, id int64, upd storage.TransactionUpdate) (int64, error) {
	n, err := s.storage.UpdateTransaction(ctx, userID, id, upd)
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	if n > 0 {
		s.requestBackup(ctx, userID, "transaction.update")
	}
	return n, nil
}

func (s *BudgetService) DeleteTransaction(ctx context.Context, userID, id int64) (int64, error) {
	n, err := s.storage.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
		s.requestBackup(ctx, userID, "transaction.delete")
	}
	return n, nil
}

func (s *BudgetService) SetBudget(ctx context.Context, userID int64, month string, amountCents int64) (core.Budget, error) {
	b, err := s.storage.SetBudget(ctx, userID, month, amountCents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	s.requestBackup(ctx, userID, "budget.set")
	return b, nil
}

func (s *BudgetService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.requestBackup(ctx, created.UserID, "category.create")
	return created, nil
}

func (s *BudgetService) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	created, err := s.storage.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	s.requestBackup(ctx, created.UserID, "recurring.create")
	return created, nil
}

func (s *BudgetService) UpdateRecurring(ctx context.Context, userID, id int64, upd storage.RecurringUpdate) (int64, error) {
	n, err := s.storage.UpdateRecurring(ctx, userID, id, upd)
	if err != nil {
		return 0, fmt.Errorf("update recurring transaction: %w", err)
	}
	if n > 0 {
		s.requestBackup(ctx, userID, "recurring.update")
	}
	return n, nil
}

func (s *BudgetService) UpdateGoogleDrive(ctx context.Context, userID int64, upd storage.AppSettingsUpdate) (core.AppSettings, error) {
	settings, err := s.storage.UpsertAppSettings(ctx, userID, upd)
	if err != nil {
		return core.AppSettings{}, fmt.Errorf("update app settings: %w", err)
	}
	s.requestBackup(ctx, userID, "settings.updateGoogleDrive")
	return settings, nil
}

func (s *BudgetService) requestBackup(ctx context.Context, userID int64, reason string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping backup request",
			"user_id", userID, "reason", reason)
		return
	}
	if err := s.amqpClient.PublishBackupRequest(ctx, userID, reason); err != nil {
		// Mutation already committed locally; the worker's periodic scan
		// will pick the user up later.
		slog.ErrorContext(ctx, "Failed to publish backup request",
			"user_id", userID, "reason", reason, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *BudgetService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %v", errs)
	}

	return nil
}
