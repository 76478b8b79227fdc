package bus

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that an instance rewrote the stored
// expense blob. It carries no record data, only the storage key, the
// backend version and the writer's identity so receivers can skip their
// own announcements and reload.
type LedgerChangedMessage struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates an announcement for the given key and
// backend version, stamped with the writer's origin id.
func NewLedgerChangedMessage(key, origin string, version int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Key:       key,
		Origin:    origin,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
