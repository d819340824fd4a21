package models

import "time"

// Message types accepted by the message store. Content holds the text body
// for 'text' and a durable storage URL for the media types.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

// ValidMessageType reports whether t is one of the supported message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio, MessageTypeDocument:
		return true
	}
	return false
}

// Message represents a chat message. Append-only; ordering is by CreatedAt.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversationId" db:"conversation_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	MessageType    string    `json:"messageType" db:"message_type"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// MessageWithSender includes sender information
type MessageWithSender struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversationId"`
	Sender         UserResponse `json:"sender"`
	MessageType    string       `json:"messageType"`
	Content        string       `json:"content"`
	CreatedAt      time.Time    `json:"createdAt"`
}
