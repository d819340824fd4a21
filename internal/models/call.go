package models

import "time"

// Call represents a call session scoped to a conversation. At most one call
// per conversation is active at any instant; superseded sessions are kept as
// history with IsActive false and are never reactivated.
type Call struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversationId" db:"conversation_id"`
	RoomID         string    `json:"roomId" db:"room_id"`
	CreatedBy      string    `json:"createdBy" db:"created_by"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
