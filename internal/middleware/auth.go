package middleware

import (
	"strings"

	"obrolin/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the session JWT from the Authorization header,
// falling back to the token cookie for browser clients.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := ""
	if h := c.Get("Authorization"); h != "" {
		tokenString = strings.TrimSpace(strings.TrimPrefix(h, "Bearer"))
	}
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - No token provided",
		})
	}

	// Validate token
	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized - Invalid token",
		})
	}

	// Store user info in context
	c.Locals("userID", claims.UserID)
	c.Locals("tokenIdentifier", claims.TokenIdentifier)
	c.Locals("name", claims.Name)

	return c.Next()
}

// GetUserID gets user ID from context
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

// GetTokenIdentifier gets the identity-provider token from context
func GetTokenIdentifier(c *fiber.Ctx) string {
	token, ok := c.Locals("tokenIdentifier").(string)
	if !ok {
		return ""
	}
	return token
}

// GetUserName gets the display name from context
func GetUserName(c *fiber.Ctx) string {
	name, ok := c.Locals("name").(string)
	if !ok {
		return ""
	}
	return name
}
