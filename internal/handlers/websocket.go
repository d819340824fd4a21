package handlers

import (
	"obrolin/server/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebSocketUpgrade checks if the request should be upgraded to WebSocket
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"success": false,
		"error":   "WebSocket upgrade required",
	})
}

// WebSocketHandler attaches the connection to the event feed hub
func WebSocketHandler(c *websocket.Conn) {
	// Set by auth middleware before the upgrade
	userID := c.Locals("userID").(string)

	client := ws.NewClient(userID, c, WSHub)

	WSHub.Register <- client

	go client.WritePump()
	client.ReadPump() // Blocks until connection closes
}

// GetWebSocketStats returns event feed connection statistics
func GetWebSocketStats(c *fiber.Ctx) error {
	if WSHub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Event feed hub not initialized",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"connectedUsers": WSHub.ConnectedCount(),
			"userIds":        WSHub.ConnectedUsers(),
		},
	})
}
