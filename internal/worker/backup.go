package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/amqp"
	"github.com/ahmedsps3/personal-budget-app/internal/drive"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

// BackupWorker uploads per-user JSON snapshots to Google Drive. It reacts to
// AMQP backup requests and also scans for users with Drive configured whose
// snapshot is stale, so missed messages eventually converge.
type BackupWorker struct {
	storage   *storage.Repository
	uploader  drive.SnapshotWriter
	batchSize int
}

func NewBackupWorker(repo *storage.Repository, uploader drive.SnapshotWriter, batchSize int) *BackupWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &BackupWorker{
		storage:   repo,
		uploader:  uploader,
		batchSize: batchSize,
	}
}

// HandleBackupRequest processes one queued backup request. Users without a
// Drive token are skipped, not failed, so the message is not redelivered.
func (w *BackupWorker) HandleBackupRequest(ctx context.Context, msg *amqp.BackupRequestMessage) error {
	settings, err := w.storage.GetAppSettings(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load app settings for user %d: %w", msg.UserID, err)
	}
	if settings == nil || settings.GoogleDriveToken == "" {
		slog.DebugContext(ctx, "Skipping backup - no Drive token",
			"user_id", msg.UserID, "reason", msg.Reason)
		return nil
	}

	return w.backupUser(ctx, msg.UserID, settings.GoogleDriveToken, settings.GoogleDriveFolderID)
}

// ProcessPendingBackups snapshots every user with a Drive token whose last
// sync is older than maxAge, up to the configured batch size per pass.
func (w *BackupWorker) ProcessPendingBackups(ctx context.Context, maxAge time.Duration) (int, error) {
	candidates, err := w.storage.ListBackupUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list backup users: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	processed := 0

	for _, settings := range candidates {
		if processed >= w.batchSize {
			break
		}
		if !settings.LastSyncDate.IsZero() && settings.LastSyncDate.After(cutoff) {
			continue
		}

		if err := w.backupUser(ctx, settings.UserID, settings.GoogleDriveToken, settings.GoogleDriveFolderID); err != nil {
			slog.ErrorContext(ctx, "Pending backup failed",
				"user_id", settings.UserID, "error", err)
			continue
		}
		processed++
	}

	if processed > 0 {
		slog.InfoContext(ctx, "Pending backup scan complete",
			"processed", processed, "candidates", len(candidates))
	}
	return processed, nil
}

func (w *BackupWorker) backupUser(ctx context.Context, userID int64, token, folderID string) error {
	export, err := w.storage.ExportUserData(ctx, userID)
	if err != nil {
		return fmt.Errorf("export user %d: %w", userID, err)
	}

	fileID, err := w.uploader.UploadSnapshot(ctx, token, folderID, export)
	if err != nil {
		return fmt.Errorf("upload snapshot for user %d: %w", userID, err)
	}

	now := time.Now().UTC()
	if _, err := w.storage.UpsertAppSettings(ctx, userID, storage.AppSettingsUpdate{LastSyncDate: &now}); err != nil {
		// Snapshot is uploaded; a stale stamp only means one extra upload
		// on the next scan.
		slog.ErrorContext(ctx, "Failed to stamp last sync date",
			"user_id", userID, "error", err)
	}

	slog.InfoContext(ctx, "User backup complete",
		"user_id", userID,
		"drive_file_id", fileID,
		"transactions", len(export.Transactions))
	return nil
}
