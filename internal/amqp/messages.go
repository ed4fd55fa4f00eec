package amqp

import (
	"encoding/json"
	"time"

	"fluxoconta/internal/core"
)

// ImportEventMessage announces a committed import. It carries the IDs of the
// new transactions so the worker can look them up and mirror them, plus the
// per-type totals for logging.
type ImportEventMessage struct {
	Filename       string     `json:"filename"`
	TransactionIDs []string   `json:"transactionIds"`
	Stats          core.Stats `json:"stats"`
	Timestamp      time.Time  `json:"timestamp"`
}

func NewImportEventMessage(filename string, ids []string, stats core.Stats) *ImportEventMessage {
	return &ImportEventMessage{
		Filename:       filename,
		TransactionIDs: ids,
		Stats:          stats,
		Timestamp:      time.Now(),
	}
}

func (m *ImportEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ImportEventMessageFromJSON(data []byte) (*ImportEventMessage, error) {
	var msg ImportEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
