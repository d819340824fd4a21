package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"obrolin/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageStore appends and reads typed messages. It is deliberately thin:
// delivery and read-state belong to the realtime layer, not here.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore returns a MessageStore using the given pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// Append inserts a message. The sender must be a participant of the
// conversation; ErrNotFound if the conversation does not exist.
func (m *MessageStore) Append(ctx context.Context, conversationID, senderID, messageType, content string) (*models.Message, error) {
	if !models.ValidMessageType(messageType) {
		return nil, fmt.Errorf("invalid message type %q", messageType)
	}

	var isParticipant bool
	err := m.pool.QueryRow(ctx, `
		SELECT $2 = ANY(participants) FROM conversations WHERE id = $1
	`, conversationID, senderID).Scan(&isParticipant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isParticipant {
		return nil, ErrNotParticipant
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		MessageType:    messageType,
		Content:        content,
	}

	err = m.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, message_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.MessageType, msg.Content, time.Now()).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// List returns messages for a conversation with sender profiles, oldest
// first. Pagination is page/limit like the other list endpoints.
func (m *MessageStore) List(ctx context.Context, conversationID string, page, limit int) ([]models.MessageWithSender, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	rows, err := m.pool.Query(ctx, `
		SELECT m.id, m.conversation_id, m.message_type, m.content, m.created_at,
			u.id, u.email, u.name, u.image, u.is_online, u.created_at
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.MessageWithSender
	for rows.Next() {
		var msg models.MessageWithSender
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.MessageType, &msg.Content, &msg.CreatedAt,
			&msg.Sender.ID, &msg.Sender.Email, &msg.Sender.Name, &msg.Sender.Image,
			&msg.Sender.IsOnline, &msg.Sender.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if messages == nil {
		messages = []models.MessageWithSender{}
	}
	return messages, rows.Err()
}
