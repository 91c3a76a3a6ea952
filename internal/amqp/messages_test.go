package amqp

import (
	"testing"
	"time"
)

func TestNewInsightJobMessage(t *testing.T) {
	msg := NewInsightJobMessage(42)

	if msg.UserID != 42 {
		t.Errorf("UserID = %d, want 42", msg.UserID)
	}
	if msg.RequestedAt.IsZero() {
		t.Error("RequestedAt should not be zero")
	}
	if time.Since(msg.RequestedAt) > time.Second {
		t.Error("RequestedAt should be recent")
	}
}

func TestInsightJobMessageJSON(t *testing.T) {
	requestedAt := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	msg := &InsightJobMessage{UserID: 7, RequestedAt: requestedAt}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := InsightJobMessageFromJSON(data)
	if err != nil {
		t.Fatalf("InsightJobMessageFromJSON: %v", err)
	}
	if parsed.UserID != 7 {
		t.Errorf("UserID = %d, want 7", parsed.UserID)
	}
	if !parsed.RequestedAt.Equal(requestedAt) {
		t.Errorf("RequestedAt = %v, want %v", parsed.RequestedAt, requestedAt)
	}
}

func TestInsightJobMessageInvalidJSON(t *testing.T) {
	if _, err := InsightJobMessageFromJSON([]byte(`{"user_id": "seven"}`)); err == nil {
		t.Error("invalid JSON should fail to parse")
	}
}
