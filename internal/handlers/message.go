package handlers

import (
	"errors"
	"strconv"
	"time"

	"obrolin/server/internal/models"
	"obrolin/server/internal/store"
	"obrolin/server/internal/ws"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents send message request body. Content is the
// text body for 'text' messages and a durable storage URL for media.
type SendMessageRequest struct {
	MessageType string `json:"messageType,omitempty"`
	Content     string `json:"content"`
}

// SendMessage appends a message to a conversation
func SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("conversationId")

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Content is required",
		})
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if !models.ValidMessageType(req.MessageType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid message type",
		})
	}

	msg, err := Messages.Append(c.Context(), conversationID, userID, req.MessageType, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Conversation not found",
			})
		case errors.Is(err, store.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "You are not a participant of this conversation",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to send message",
			})
		}
	}

	if WSHub != nil {
		if conv, readErr := Conversations.ByID(c.Context(), conversationID); readErr == nil {
			WSHub.NotifyUsers(without(conv.Participants, userID), ws.WSMessage{
				Type:      ws.EventMessageSent,
				Payload:   ws.MessagePayload{Message: *msg},
				Timestamp: time.Now(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}

// GetMessages returns a conversation's messages with sender profiles,
// oldest first
func GetMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("conversationId")

	isParticipant, err := Conversations.IsParticipant(c.Context(), conversationID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Conversation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	if !isParticipant {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a participant of this conversation",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	messages, err := Messages.List(c.Context(), conversationID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get messages",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"messages": messages,
			"pagination": fiber.Map{
				"page":  page,
				"limit": limit,
			},
		},
	})
}
