package http

import (
	"net/http"
	"strings"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	settings, err := s.storage.GetAppSettings(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if settings == nil {
		writeResult(w, settingsDTO{})
		return
	}
	writeResult(w, toSettingsDTO(*settings))
}

type settingsUpdateGoogleDriveInput struct {
	GoogleDriveToken    *string `json:"googleDriveToken"`
	GoogleDriveFolderID *string `json:"googleDriveFolderId"`
}

// handleSettingsUpdateGoogleDrive stores or clears the user's Drive sync
// credentials. An empty token disables backups for the user.
func (s *Server) handleSettingsUpdateGoogleDrive(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in settingsUpdateGoogleDriveInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.GoogleDriveToken == nil && in.GoogleDriveFolderID == nil {
		writeError(w, validationErrorf("nothing to update"))
		return
	}

	var upd storage.AppSettingsUpdate
	if in.GoogleDriveToken != nil {
		token := strings.TrimSpace(*in.GoogleDriveToken)
		upd.GoogleDriveToken = &token
	}
	if in.GoogleDriveFolderID != nil {
		folderID := strings.TrimSpace(*in.GoogleDriveFolderID)
		upd.GoogleDriveFolderID = &folderID
	}

	settings, err := s.service.UpdateGoogleDrive(r.Context(), user.ID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toSettingsDTO(settings))
}
