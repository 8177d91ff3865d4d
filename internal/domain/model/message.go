package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the kinds of report feed messages
type MessageType string

const (
	// MessageTypeScenarioResult carries one ScenarioResult
	MessageTypeScenarioResult MessageType = "scenario_result"
	// MessageTypeRunSummary carries one RunSummary
	MessageTypeRunSummary MessageType = "run_summary"
	// MessageTypeError carries an ErrorPayload
	MessageTypeError MessageType = "error"
)

// FeedVersion is the report feed protocol version
const FeedVersion = "1.0.0"

// Message is the envelope for every report feed message
type Message struct {
	// Type is the message type
	Type MessageType `json:"type"`
	// Version is the feed protocol version
	Version string `json:"version"`
	// Timestamp is when the message was created (in milliseconds since epoch)
	Timestamp int64 `json:"timestamp"`
	// Payload contains the actual message data
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with specified type and payload
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadJSON json.RawMessage
	var err error

	if payload != nil {
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to convert payload to JSON: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Version:   FeedVersion,
		Timestamp: time.Now().UnixNano() / int64(time.Millisecond),
		Payload:   payloadJSON,
	}, nil
}

// ParsePayload parses message payload into the provided struct
func (m *Message) ParsePayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// ErrorPayload is for error messages
type ErrorPayload struct {
	// Message contains the error details
	Message string `json:"message"`
}
