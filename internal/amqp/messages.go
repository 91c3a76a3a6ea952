package amqp

import (
	"encoding/json"
	"time"
)

// InsightJobMessage asks the worker to generate insights for one user.
// It carries only the user id; the worker reads everything else fresh
// from the database.
type InsightJobMessage struct {
	UserID      int64     `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewInsightJobMessage(userID int64) *InsightJobMessage {
	return &InsightJobMessage{
		UserID:      userID,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *InsightJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InsightJobMessageFromJSON(data []byte) (*InsightJobMessage, error) {
	var msg InsightJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
