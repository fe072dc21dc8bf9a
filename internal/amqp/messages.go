package amqp

import (
	"encoding/json"
	"time"
)

// DatasetImportedMessage announces that a snapshot was stored. It carries
// only the snapshot id and a summary; consumers reload from storage.
type DatasetImportedMessage struct {
	SnapshotID int64     `json:"snapshot_id"`
	Rows       int       `json:"rows"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewDatasetImportedMessage(snapshotID int64, rows int, source string) *DatasetImportedMessage {
	return &DatasetImportedMessage{
		SnapshotID: snapshotID,
		Rows:       rows,
		Source:     source,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetImportedMessageFromJSON(data []byte) (*DatasetImportedMessage, error) {
	var msg DatasetImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
