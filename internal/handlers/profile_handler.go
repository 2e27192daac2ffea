package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

type profileManager interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateStatus(ctx context.Context, userID string, input services.StatusUpdateInput) (*models.Profile, error)
}

type presenceNotifier interface {
	BroadcastPresence(userID, username string, goMode bool)
}

type ProfileHandler struct {
	profileService profileManager
	presence       presenceNotifier
}

func NewProfileHandler(profileService profileManager, presence presenceNotifier) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		presence:       presence,
	}
}

// GetMe is the lazy-expiry read path: loading your own profile is what
// durably clears an expired Go Mode or Boost.
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}
	return c.JSON(fiber.Map{"profile": profile})
}

type statusUpdateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	GoMode    *bool    `json:"go_mode"`
	Instagram *string  `json:"instagram"`
	Snapchat  *string  `json:"snapchat"`
	Twitter   *string  `json:"twitter"`
}

func (h *ProfileHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateStatusUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.UpdateStatus(c.Context(), userID, services.StatusUpdateInput{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		GoMode:    req.GoMode,
		Instagram: req.Instagram,
		Snapchat:  req.Snapchat,
		Twitter:   req.Twitter,
	})
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
	}

	if req.GoMode != nil && h.presence != nil {
		h.presence.BroadcastPresence(profile.UserID, profile.Username, profile.IsGoMode)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// DeleteMe is a stated surface without an implementation yet.
func (h *ProfileHandler) DeleteMe(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "Account deletion is not available yet"})
}

func currentUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", errInvalidIdentity
	}
	return userID, nil
}

func currentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

var errInvalidIdentity = errors.New("invalid identity")
