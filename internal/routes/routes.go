package routes

import (
	"obrolin/server/internal/handlers"
	"obrolin/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Obrolin API is running",
		})
	})

	// Identity provider sync (public, signature-verified)
	api.Post("/webhooks/identity", middleware.WebhookRateLimiter(), handlers.IdentityWebhook)

	// User routes (protected)
	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/", handlers.GetUsers)
	api.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// Conversation routes (protected)
	conversations := api.Group("/conversations", middleware.AuthMiddleware)
	conversations.Post("/", middleware.WriteRateLimiter(), handlers.CreateConversation)
	conversations.Get("/", handlers.GetConversations)
	conversations.Post("/:conversationId/leave", handlers.LeaveGroup)
	conversations.Delete("/:conversationId/participants/:userId", handlers.KickUser)

	// Message routes (protected)
	conversations.Post("/:conversationId/messages", middleware.WriteRateLimiter(), handlers.SendMessage)
	conversations.Get("/:conversationId/messages", handlers.GetMessages)

	// Call routes (protected)
	conversations.Post("/:conversationId/calls", handlers.StartOrJoinCall)
	conversations.Get("/:conversationId/calls/active", handlers.GetActiveCall)
	conversations.Get("/:conversationId/calls", handlers.GetCallHistory)
	conversations.Get("/:conversationId/calls/token", handlers.GetRoomToken)

	// Upload routes (protected)
	uploads := api.Group("/upload", middleware.AuthMiddleware)
	uploads.Post("/file", middleware.UploadRateLimiter(), handlers.UploadFile)

	// Serve uploaded files (public)
	app.Get("/uploads/:type/:filename", handlers.GetFile)

	// WebSocket event feed (protected)
	api.Get("/ws", middleware.AuthMiddleware, handlers.WebSocketUpgrade, websocket.New(handlers.WebSocketHandler))

	// Event feed stats (protected, for debugging)
	api.Get("/ws/stats", middleware.AuthMiddleware, handlers.GetWebSocketStats)
}
