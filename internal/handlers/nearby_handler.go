package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
)

type nearbyLister interface {
	GetNearbyUsers(ctx context.Context, requesterID string) ([]models.NearbyUser, error)
}

type NearbyHandler struct {
	visibilityService nearbyLister
}

func NewNearbyHandler(visibilityService nearbyLister) *NearbyHandler {
	return &NearbyHandler{visibilityService: visibilityService}
}

func (h *NearbyHandler) GetNearbyUsers(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	users, err := h.visibilityService.GetNearbyUsers(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch nearby users"})
	}
	return c.JSON(fiber.Map{"users": users})
}
