package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"

	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

// SnapshotWriter is the outbound port the backup worker uses.
type SnapshotWriter interface {
	UploadSnapshot(ctx context.Context, tokenJSON, folderID string, export storage.UserExport) (fileID string, err error)
}

// Uploader writes per-user JSON snapshots to Google Drive. The OAuth client
// config is shared; each user supplies their own token from app settings.
type Uploader struct {
	oauthConfig *oauth2.Config
}

var _ SnapshotWriter = (*Uploader)(nil)

// NewUploader builds an uploader from OAuth client credentials JSON.
func NewUploader(clientJSON []byte) (*Uploader, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, gdrive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return &Uploader{oauthConfig: cfg}, nil
}

// NewUploaderFromEnv reads OAuth client credentials from
// GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE.
func NewUploaderFromEnv() (*Uploader, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	switch {
	case clientJSON != "":
		return NewUploader([]byte(clientJSON))
	case clientFile != "":
		data, err := os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		return NewUploader(data)
	default:
		return nil, errors.New("missing OAuth client credentials (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
}

// OAuthConfig exposes the client config for the token bootstrap command.
func (u *Uploader) OAuthConfig() *oauth2.Config {
	return u.oauthConfig
}

// SnapshotName is the stable per-user backup file name. Uploads overwrite the
// previous snapshot instead of accumulating one file per run.
func SnapshotName(userID int64) string {
	return fmt.Sprintf("budget-backup-user-%d.json", userID)
}

// UploadSnapshot serializes the export and writes it to the user's Drive,
// replacing an existing snapshot file when one is found.
func (u *Uploader) UploadSnapshot(ctx context.Context, tokenJSON, folderID string, export storage.UserExport) (string, error) {
	if strings.TrimSpace(tokenJSON) == "" {
		return "", errors.New("missing Drive token")
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &token); err != nil {
		return "", fmt.Errorf("parse Drive token: %w", err)
	}

	svc, err := gdrive.NewService(ctx, goption.WithHTTPClient(u.oauthConfig.Client(ctx, &token)))
	if err != nil {
		return "", fmt.Errorf("create drive service: %w", err)
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := SnapshotName(export.User.ID)
	existingID, err := u.findSnapshot(ctx, svc, name, folderID)
	if err != nil {
		return "", err
	}

	var fileID string
	if existingID != "" {
		file, err := svc.Files.Update(existingID, &gdrive.File{}).
			Media(bytes.NewReader(body)).
			Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update snapshot %s: %w", existingID, err)
		}
		fileID = file.Id
	} else {
		meta := &gdrive.File{
			Name:     name,
			MimeType: "application/json",
		}
		if folderID != "" {
			meta.Parents = []string{folderID}
		}
		file, err := svc.Files.Create(meta).
			Media(bytes.NewReader(body)).
			Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("create snapshot: %w", err)
		}
		fileID = file.Id
	}

	slog.InfoContext(ctx, "Uploaded Drive snapshot",
		"user_id", export.User.ID,
		"drive_file_id", fileID,
		"transactions", len(export.Transactions),
		"size_bytes", len(body))

	return fileID, nil
}

func (u *Uploader) findSnapshot(ctx context.Context, svc *gdrive.Service, name, folderID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", name)
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", folderID)
	}

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search for snapshot: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}
