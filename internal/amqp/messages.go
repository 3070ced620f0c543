package amqp

import (
	"encoding/json"
	"time"
)

// DatasetRefreshMessage asks running dashboards to drop their memoized
// dataset and read the source again on the next request.
type DatasetRefreshMessage struct {
	Source      string    `json:"source"`
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewDatasetRefreshMessage creates a refresh message stamped with the current time.
func NewDatasetRefreshMessage(source, requestedBy string) *DatasetRefreshMessage {
	return &DatasetRefreshMessage{
		Source:      source,
		RequestedBy: requestedBy,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetRefreshMessageFromJSON decodes a refresh message.
func DatasetRefreshMessageFromJSON(data []byte) (*DatasetRefreshMessage, error) {
	var msg DatasetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
