package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/appsettings"
)

// SettingsHandler exposes the local client-settings store: a fixed set of
// boolean toggles with no per-profile server sync.
type SettingsHandler struct {
	store *appsettings.Store
}

func NewSettingsHandler(store *appsettings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"settings": h.store.All()})
}

type updateSettingRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

func (h *SettingsHandler) UpdateSetting(c *fiber.Ctx) error {
	var req updateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.store.Set(req.Key, req.Value); err != nil {
		if errors.Is(err, appsettings.ErrUnknownKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown setting key"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save setting"})
	}
	return c.JSON(fiber.Map{"settings": h.store.All()})
}
