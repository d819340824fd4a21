package handlers

import (
	"errors"
	"strconv"
	"time"

	"obrolin/server/internal/store"
	"obrolin/server/internal/utils"
	"obrolin/server/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StartCallRequest represents start call request body. RoomID is optional;
// a fresh room id is generated when absent. Force supersedes an active
// call instead of joining it.
type StartCallRequest struct {
	RoomID string `json:"roomId,omitempty"`
	Force  bool   `json:"force,omitempty"`
}

// StartOrJoinCall starts a call in a conversation, or returns the active
// one to join. The active-call check and the insert are separate store
// operations: two racing starts are resolved by the store, not here.
func StartOrJoinCall(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("conversationId")

	var req StartCallRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}
	}

	conv, err := Conversations.ByID(c.Context(), conversationID)
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

	// Join the existing room instead of orphaning it
	if !req.Force {
		active, err := Calls.ActiveCall(c.Context(), conversationID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to check active call",
			})
		}
		if active != nil {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    active,
				"joined":  true,
			})
		}
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = uuid.New().String()
	}

	call, err := Calls.StartCall(c.Context(), conversationID, roomID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to start call",
		})
	}

	if WSHub != nil {
		WSHub.NotifyUsers(without(conv.Participants, userID), ws.WSMessage{
			Type: ws.EventCallStarted,
			Payload: ws.CallPayload{
				ConversationID: call.ConversationID,
				RoomID:         call.RoomID,
				CreatedBy:      call.CreatedBy,
				CreatedAt:      call.CreatedAt,
			},
			Timestamp: time.Now(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    call,
		"joined":  false,
	})
}

// GetActiveCall returns the conversation's active call session, or null.
func GetActiveCall(c *fiber.Ctx) error {
	conversationID := c.Params("conversationId")

	call, err := Calls.ActiveCall(c.Context(), conversationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get active call",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    call,
	})
}

// GetCallHistory returns the conversation's past and current call sessions.
func GetCallHistory(c *fiber.Ctx) error {
	conversationID := c.Params("conversationId")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	calls, err := Calls.History(c.Context(), conversationID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get call history",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    calls,
	})
}

// GetRoomToken mints an access token admitting the caller into the
// conversation's active call room. Participants only.
func GetRoomToken(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	name := c.Locals("name").(string)
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

	active, err := Calls.ActiveCall(c.Context(), conversationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get active call",
		})
	}
	if active == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No active call for this conversation",
		})
	}

	ttl := time.Duration(Cfg.RoomTokenTTLMinutes) * time.Minute
	token, err := utils.GenerateRoomToken(active.RoomID, conversationID, userID, name, ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate room token",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"roomId": active.RoomID,
			"token":  token,
		},
	})
}
