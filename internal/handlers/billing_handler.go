package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/logger"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

type billingManager interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateCheckout(ctx context.Context, profile *models.Profile, priceID, successURL, cancelURL string) (*services.CheckoutResult, error)
	CreatePortal(ctx context.Context, profile *models.Profile, returnURL string) (string, error)
	HandleCheckoutCompleted(ctx context.Context, event services.CheckoutCompletedEvent) error
	SyncProduct(ctx context.Context, product models.Product) error
	SyncPrice(ctx context.Context, price models.Price) error
}

type billingProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type BillingHandler struct {
	billingService billingManager
	profileService billingProfileReader
	webhookSecret  string
}

func NewBillingHandler(billingService billingManager, profileService billingProfileReader, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		profileService: profileService,
		webhookSecret:  webhookSecret,
	}
}

func (h *BillingHandler) ListProducts(c *fiber.Ctx) error {
	if _, err := currentUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	products, err := h.billingService.ListProducts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(fiber.Map{"products": products})
}

type checkoutRequest struct {
	PriceID    string `json:"price_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateCheckoutRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	result, err := h.billingService.CreateCheckout(c.Context(), profile, req.PriceID, req.SuccessURL, req.CancelURL)
	if err != nil {
		if errors.Is(err, services.ErrPriceNotFound) || errors.Is(err, services.ErrInactivePrice) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown or inactive price"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start checkout"})
	}
	return c.JSON(result)
}

type portalRequest struct {
	ReturnURL string `json:"return_url"`
}

func (h *BillingHandler) CreatePortal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req portalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ReturnURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "return_url is required"})
	}

	profile, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	url, err := h.billingService.CreatePortal(c.Context(), profile, req.ReturnURL)
	if err != nil {
		if errors.Is(err, services.ErrNoCustomer) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No billing history for this account"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open billing portal"})
	}
	return c.JSON(fiber.Map{"url": url})
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type webhookCheckoutObject struct {
	ID          string `json:"id"`
	AmountTotal int64  `json:"amount_total"`
	Metadata    struct {
		UserID    string `json:"user_id"`
		ProductID string `json:"product_id"`
	} `json:"metadata"`
}

type webhookProductObject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Active      bool    `json:"active"`
	Metadata    struct {
		Kind       string `json:"kind"`
		CoinAmount int    `json:"coin_amount,string"`
		Tier       string `json:"tier"`
	} `json:"metadata"`
}

type webhookPriceObject struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
	Recurring  *struct {
		Interval string `json:"interval"`
	} `json:"recurring"`
}

// Webhook is the unauthenticated callback surface. Every event is signature
// checked before parsing; unrecognized event types are acknowledged so the
// processor stops retrying them.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()
	if err := services.VerifyWebhookSignature(payload, c.Get("Webhook-Signature"), h.webhookSecret); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	switch event.Type {
	case "checkout.session.completed":
		var object webhookCheckoutObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
		}
		if object.Metadata.UserID == "" || object.Metadata.ProductID == "" {
			logger.Log.WithField("checkout", object.ID).Warn("checkout completed without grant metadata")
			return c.JSON(fiber.Map{"received": true})
		}
		err := h.billingService.HandleCheckoutCompleted(c.Context(), services.CheckoutCompletedEvent{
			CheckoutRef: object.ID,
			UserID:      object.Metadata.UserID,
			ProductID:   object.Metadata.ProductID,
			Amount:      object.AmountTotal,
		})
		if err != nil {
			if errors.Is(err, services.ErrUnknownProduct) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown product"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process event"})
		}
	case "product.created", "product.updated":
		var object webhookProductObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
		}
		product := models.Product{
			ID:          object.ID,
			Name:        object.Name,
			Description: object.Description,
			Kind:        object.Metadata.Kind,
			CoinAmount:  object.Metadata.CoinAmount,
			Active:      object.Active,
		}
		if object.Metadata.Tier != "" {
			product.Tier = &object.Metadata.Tier
		}
		if err := h.billingService.SyncProduct(c.Context(), product); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process event"})
		}
	case "price.created", "price.updated":
		var object webhookPriceObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
		}
		price := models.Price{
			ID:         object.ID,
			ProductID:  object.Product,
			UnitAmount: object.UnitAmount,
			Currency:   object.Currency,
			Active:     object.Active,
		}
		if object.Recurring != nil {
			price.Interval = &object.Recurring.Interval
		}
		if err := h.billingService.SyncPrice(c.Context(), price); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process event"})
		}
	default:
		logger.Log.WithField("type", event.Type).Debug("ignoring webhook event")
	}

	return c.JSON(fiber.Map{"received": true})
}
