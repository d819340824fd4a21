package ws

import (
	"time"

	"obrolin/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Conversation lifecycle events
	EventConversationCreated EventType = "conversation_created"
	EventMemberLeft          EventType = "member_left"
	EventMemberKicked        EventType = "member_kicked"

	// Call coordination events
	EventCallStarted EventType = "call_started"

	// Message events
	EventMessageSent EventType = "message_sent"

	// Error events
	EventError EventType = "error"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// MembershipPayload describes a membership change in a conversation.
// NewAdmin is set when the change reassigned the group admin.
type MembershipPayload struct {
	ConversationID string  `json:"conversationId"`
	UserID         string  `json:"userId"`
	ActorID        string  `json:"actorId"`
	NewAdmin       *string `json:"newAdmin,omitempty"`
}

// ConversationPayload announces a new conversation to its participants.
type ConversationPayload struct {
	Conversation models.Conversation `json:"conversation"`
}

// CallPayload announces a call session. Receivers join by fetching a room
// token for RoomID rather than starting a session of their own.
type CallPayload struct {
	ConversationID string    `json:"conversationId"`
	RoomID         string    `json:"roomId"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessagePayload carries an appended message to connected participants.
type MessagePayload struct {
	Message models.Message `json:"message"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
