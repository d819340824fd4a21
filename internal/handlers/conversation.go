package handlers

import (
	"errors"
	"math/rand"
	"time"

	"obrolin/server/internal/store"
	"obrolin/server/internal/ws"

	"github.com/gofiber/fiber/v2"
)

// CreateConversationRequest represents create conversation request body.
// GroupImage is a storage reference returned by the upload endpoint; it is
// resolved to a durable URL before anything is persisted.
type CreateConversationRequest struct {
	Participants []string `json:"participants"`
	IsGroup      bool     `json:"isGroup"`
	GroupName    string   `json:"groupName,omitempty"`
	GroupImage   string   `json:"groupImage,omitempty"`
	Admin        string   `json:"admin,omitempty"`
}

// CreateConversation creates a conversation, or returns the existing one
// for a direct chat with the same participant set.
func CreateConversation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if len(req.Participants) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "At least one participant is required",
		})
	}

	args := store.CreateConversationArgs{
		Participants: req.Participants,
		IsGroup:      req.IsGroup,
	}
	if req.GroupName != "" {
		args.GroupName = &req.GroupName
	}
	if req.Admin != "" {
		args.Admin = &req.Admin
	}

	// Resolve the image reference first so a bad reference leaves no
	// conversation row behind
	if req.GroupImage != "" {
		url, err := ResolveStorageRef(req.GroupImage)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Unknown group image reference",
			})
		}
		args.GroupImage = &url
	}

	conv, err := Conversations.CreateConversation(c.Context(), args)
	if err != nil {
		if errors.Is(err, store.ErrNotParticipant) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Admin must be a participant",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create conversation",
		})
	}

	if WSHub != nil {
		WSHub.NotifyUsers(without(conv.Participants, userID), ws.WSMessage{
			Type:      ws.EventConversationCreated,
			Payload:   ws.ConversationPayload{Conversation: *conv},
			Timestamp: time.Now(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    conv,
	})
}

// GetConversations returns the caller's conversations, each with the other
// participant's profile (direct chats) and the latest message.
func GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	views, err := Conversations.MyConversations(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get conversations",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    views,
	})
}

// KickUser removes a participant from a conversation. Membership of the
// caller is not required; any authenticated user may remove any participant.
func KickUser(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(string)
	conversationID := c.Params("conversationId")
	targetID := c.Params("userId")

	participants, err := Conversations.KickUser(c.Context(), conversationID, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Conversation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to remove participant",
		})
	}

	if WSHub != nil {
		// participants is the pre-removal sequence, so the kicked user hears
		// about it too
		WSHub.NotifyUsers(without(participants, actorID), ws.WSMessage{
			Type: ws.EventMemberKicked,
			Payload: ws.MembershipPayload{
				ConversationID: conversationID,
				UserID:         targetID,
				ActorID:        actorID,
			},
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Participant removed successfully",
	})
}

// LeaveGroup removes the caller from a group conversation, reassigning the
// admin at random when the admin leaves.
func LeaveGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("conversationId")

	newAdmin, err := Conversations.LeaveGroup(c.Context(), conversationID, userID, rand.Intn)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Conversation not found",
			})
		case errors.Is(err, store.ErrNotGroup):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Cannot leave a non-group chat",
			})
		case errors.Is(err, store.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "You are not a participant of this group",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to leave group",
			})
		}
	}

	if WSHub != nil {
		if conv, readErr := Conversations.ByID(c.Context(), conversationID); readErr == nil {
			WSHub.NotifyUsers(conv.Participants, ws.WSMessage{
				Type: ws.EventMemberLeft,
				Payload: ws.MembershipPayload{
					ConversationID: conversationID,
					UserID:         userID,
					ActorID:        userID,
					NewAdmin:       newAdmin,
				},
				Timestamp: time.Now(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"newAdmin": newAdmin,
		},
	})
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
