package amqp

import (
	"testing"
	"time"
)

func TestBackupRequestMessageRoundTrip(t *testing.T) {
	msg := NewBackupRequestMessage(42, "transaction.create")
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := BackupRequestMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.UserID != 42 || parsed.Reason != "transaction.create" {
		t.Fatalf("unexpected message: %+v", parsed)
	}
	if parsed.Timestamp.Sub(msg.Timestamp) > time.Second {
		t.Fatal("timestamp not preserved")
	}
}

func TestBackupRequestMessageFromBadJSON(t *testing.T) {
	if _, err := BackupRequestMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
