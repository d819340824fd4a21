package models

import "time"

// Conversation represents a direct or group chat. Participants are stored as
// a sequence of user IDs sorted ascending; for non-group conversations that
// sorted sequence is unique across the table and acts as the dedup key.
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	Participants []string  `json:"participants" db:"participants"`
	IsGroup      bool      `json:"isGroup" db:"is_group"`
	GroupName    *string   `json:"groupName,omitempty" db:"group_name"`
	GroupImage   *string   `json:"groupImage,omitempty" db:"group_image"`
	Admin        *string   `json:"admin,omitempty" db:"admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ConversationView is a conversation enriched for the caller's chat list:
// the other participant's profile for direct chats, and the latest message.
type ConversationView struct {
	Conversation
	OtherUser   *UserResponse `json:"otherUser,omitempty"`
	LastMessage *Message      `json:"lastMessage,omitempty"`
}
