package queue

import (
	"encoding/json"
	"fmt"

	"pagespeed-campaign/internal/analyses"
)

// CurrentVersion is the message schema written by producers.
const CurrentVersion = 1

// Message asks a worker to run one analysis. RunID, when set, becomes the run
// id of the saved reports so the producer knows where they will land.
type Message struct {
	RunID      string           `json:"runId,omitempty"`
	RequestID  string           `json:"requestId,omitempty"`
	EnqueuedAt string           `json:"enqueuedAt,omitempty"`
	Version    int              `json:"version"`
	Request    analyses.Request `json:"request"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = CurrentVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. A missing version is
// read as the current one.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version == 0 {
		msg.Version = CurrentVersion
	}
	if msg.Version > CurrentVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
