package handlers

import (
	"errors"

	"obrolin/server/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetMe returns the authenticated user's profile
func GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	user, err := Users.ByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user.ToResponse(),
	})
}

// GetUsers returns every other user, for starting new conversations
func GetUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	users, err := Users.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get users",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}
