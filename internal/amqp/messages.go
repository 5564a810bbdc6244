package amqp

import (
	"encoding/json"
	"time"
)

// BackupRequestMessage asks the backup worker to snapshot one user's data to
// Google Drive. It carries only the user ID and the reason; the worker reads
// the current state from storage.
type BackupRequestMessage struct {
	UserID    int64     `json:"userId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBackupRequestMessage(userID int64, reason string) *BackupRequestMessage {
	return &BackupRequestMessage{
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *BackupRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BackupRequestMessageFromJSON(data []byte) (*BackupRequestMessage, error) {
	var msg BackupRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
