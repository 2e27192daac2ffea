package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

type moderator interface {
	BlockUser(ctx context.Context, blockerID, blockedID string, reason *string) error
	UnblockUser(ctx context.Context, blockerID, blockedID string) error
	ListBlocked(ctx context.Context, blockerID string) ([]models.BlockRelation, error)
	ReportUser(ctx context.Context, reporterID, reportedID, reason string, details *string) (*models.Report, error)
}

type ModerationHandler struct {
	moderationService moderator
}

func NewModerationHandler(moderationService moderator) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

type blockRequest struct {
	UserID string  `json:"user_id"`
	Reason *string `json:"reason"`
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req blockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateBlockRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	if err := h.moderationService.BlockUser(c.Context(), userID, req.UserID, req.Reason); err != nil {
		if errors.Is(err, services.ErrSelfAction) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot block yourself"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	blockedID := c.Params("userID")
	if blockedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	if err := h.moderationService.UnblockUser(c.Context(), userID, blockedID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unblock user"})
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	blocks, err := h.moderationService.ListBlocked(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch blocked users"})
	}
	if blocks == nil {
		blocks = []models.BlockRelation{}
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}

type reportRequest struct {
	UserID  string  `json:"user_id"`
	Reason  string  `json:"reason"`
	Details *string `json:"details"`
}

func (h *ModerationHandler) ReportUser(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateReportRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	report, err := h.moderationService.ReportUser(c.Context(), userID, req.UserID, req.Reason, req.Details)
	if err != nil {
		if errors.Is(err, services.ErrSelfAction) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot report yourself"})
		}
		if errors.Is(err, services.ErrInvalidReason) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report reason"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to report user"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}
