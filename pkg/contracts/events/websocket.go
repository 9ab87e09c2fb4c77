// Package events defines the messages pushed to dashboard clients over WebSocket.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDatasetReloaded is sent after the dataset cache was rebuilt.
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"

	// System messages
	MessageTypeSystemStatus MessageType = "system:status"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetReloaded is the payload of a dataset:reloaded message. Clients
// refetch whatever view they show when Fingerprint changed.
type DatasetReloaded struct {
	Fingerprint string         `json:"fingerprint"`
	LoadedAt    time.Time      `json:"loaded_at"`
	Rows        map[string]int `json:"rows"`
	Skipped     int            `json:"skipped"`
}

// ConnectData is sent to a client right after it connects.
type ConnectData struct {
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// ErrorData carries an error message to a client.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
