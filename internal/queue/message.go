package queue

import "encoding/json"

// Message is the payload sent to the generation worker. It references an
// immutable (resume, version) pair; the worker resolves the snapshot itself
// and never reads the live resume row.
type Message struct {
	JobID         string `json:"jobId"`
	ResumeID      string `json:"resumeId"`
	VersionNumber int    `json:"versionNumber"`
	RequestID     string `json:"requestId"`
	EnqueuedAt    string `json:"enqueuedAt"`
	Schema        int    `json:"schema"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
