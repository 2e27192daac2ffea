package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
)

type profileEnsurer interface {
	EnsureProfile(ctx context.Context, userID, username string, avatarURL *string) (*models.Profile, error)
}

// EnsureProfile lazily creates a profile from the identity claims on the
// first authenticated request. Runs after AuthRequired.
func EnsureProfile(service profileEnsurer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		username, _ := c.Locals("username").(string)

		var avatarURL *string
		if avatar, ok := c.Locals("avatar_url").(string); ok && avatar != "" {
			avatarURL = &avatar
		}

		if _, err := service.EnsureProfile(c.Context(), userID, username, avatarURL); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize profile"})
		}
		return c.Next()
	}
}
