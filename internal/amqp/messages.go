package amqp

import (
	"encoding/json"
	"time"
)

// ExportMessage tells the statement worker which transaction to push out.
// It carries only the reference id and version; the worker reads the full
// record from the ledger so a stale message never exports stale data.
type ExportMessage struct {
	ReferenceID string    `json:"reference_id"`
	Version     int64     `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExportMessage(referenceID string, version int64) *ExportMessage {
	return &ExportMessage{
		ReferenceID: referenceID,
		Version:     version,
		Timestamp:   time.Now(),
	}
}

func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
