package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

type stubBillingManager struct {
	products        []models.Product
	productsErr     error
	checkoutResult  *services.CheckoutResult
	checkoutErr     error
	portalURL       string
	portalErr       error
	completedErr    error
	lastPriceID     string
	lastCompleted   services.CheckoutCompletedEvent
	syncedProducts  []models.Product
	syncedPrices    []models.Price
	completedCalled bool
}

func (s *stubBillingManager) ListProducts(_ context.Context) ([]models.Product, error) {
	return s.products, s.productsErr
}

func (s *stubBillingManager) CreateCheckout(_ context.Context, _ *models.Profile, priceID, _, _ string) (*services.CheckoutResult, error) {
	s.lastPriceID = priceID
	return s.checkoutResult, s.checkoutErr
}

func (s *stubBillingManager) CreatePortal(_ context.Context, _ *models.Profile, _ string) (string, error) {
	return s.portalURL, s.portalErr
}

func (s *stubBillingManager) HandleCheckoutCompleted(_ context.Context, event services.CheckoutCompletedEvent) error {
	s.completedCalled = true
	s.lastCompleted = event
	return s.completedErr
}

func (s *stubBillingManager) SyncProduct(_ context.Context, product models.Product) error {
	s.syncedProducts = append(s.syncedProducts, product)
	return nil
}

func (s *stubBillingManager) SyncPrice(_ context.Context, price models.Price) error {
	s.syncedPrices = append(s.syncedPrices, price)
	return nil
}

type stubBillingProfileReader struct {
	profile *models.Profile
	err     error
}

func (s *stubBillingProfileReader) GetProfile(_ context.Context, _ string) (*models.Profile, error) {
	return s.profile, s.err
}

func TestListProductsReturnsEmptyArrayNotNull(t *testing.T) {
	handler := &BillingHandler{
		billingService: &stubBillingManager{},
		profileService: &stubBillingProfileReader{},
	}

	app := fiber.New()
	app.Use(identityMiddleware("user-1", "ana"))
	app.Get("/api/v1/billing/products", handler.ListProducts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/billing/products", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Products []models.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Products == nil {
		t.Fatal("expected products to decode as an empty array")
	}
}

func TestCreateCheckoutReturnsSession(t *testing.T) {
	service := &stubBillingManager{
		checkoutResult: &services.CheckoutResult{SessionID: "cs_123", URL: "https://pay.example/cs_123"},
	}
	handler := &BillingHandler{
		billingService: service,
		profileService: &stubBillingProfileReader{profile: &models.Profile{UserID: "user-1"}},
	}

	app := fiber.New()
	app.Use(identityMiddleware("user-1", "ana"))
	app.Post("/api/v1/billing/checkout", handler.CreateCheckout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", strings.NewReader(`{
		"price_id": "price_coins",
		"success_url": "https://app.example/ok",
		"cancel_url": "https://app.example/no"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPriceID != "price_coins" {
		t.Fatalf("expected price_coins, got %q", service.lastPriceID)
	}

	var body services.CheckoutResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.SessionID != "cs_123" {
		t.Fatalf("unexpected session id %q", body.SessionID)
	}
}

func TestCreateCheckoutRejectsMissingPriceID(t *testing.T) {
	handler := &BillingHandler{
		billingService: &stubBillingManager{},
		profileService: &stubBillingProfileReader{profile: &models.Profile{UserID: "user-1"}},
	}

	app := fiber.New()
	app.Use(identityMiddleware("user-1", "ana"))
	app.Post("/api/v1/billing/checkout", handler.CreateCheckout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", strings.NewReader(`{
		"success_url": "https://app.example/ok",
		"cancel_url": "https://app.example/no"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreatePortalWithoutCustomerIsRejected(t *testing.T) {
	handler := &BillingHandler{
		billingService: &stubBillingManager{portalErr: services.ErrNoCustomer},
		profileService: &stubBillingProfileReader{profile: &models.Profile{UserID: "user-1"}},
	}

	app := fiber.New()
	app.Use(identityMiddleware("user-1", "ana"))
	app.Post("/api/v1/billing/portal", handler.CreatePortal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/portal", strings.NewReader(`{"return_url": "https://app.example/settings"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

const webhookTestSecret = "whsec_test"

func signedWebhookRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Webhook-Signature", services.SignWebhookPayload([]byte(payload), webhookTestSecret, time.Now()))
	return req
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	service := &stubBillingManager{}
	handler := &BillingHandler{billingService: service, webhookSecret: webhookTestSecret}

	app := fiber.New()
	app.Post("/api/billing/webhook", handler.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Webhook-Signature", "t=12345,v1=deadbeef")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.completedCalled {
		t.Fatal("service must not run for an unverified payload")
	}
}

func TestWebhookAppliesCompletedCheckout(t *testing.T) {
	service := &stubBillingManager{}
	handler := &BillingHandler{billingService: service, webhookSecret: webhookTestSecret}

	app := fiber.New()
	app.Post("/api/billing/webhook", handler.Webhook)

	payload := `{
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_777",
			"amount_total": 499,
			"metadata": {"user_id": "user-1", "product_id": "prod_coins"}
		}}
	}`

	resp, err := app.Test(signedWebhookRequest(t, payload))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !service.completedCalled {
		t.Fatal("expected HandleCheckoutCompleted to run")
	}
	if service.lastCompleted.CheckoutRef != "cs_777" {
		t.Fatalf("expected checkout ref cs_777, got %q", service.lastCompleted.CheckoutRef)
	}
	if service.lastCompleted.UserID != "user-1" || service.lastCompleted.ProductID != "prod_coins" {
		t.Fatalf("unexpected grant target %+v", service.lastCompleted)
	}
	if service.lastCompleted.Amount != 499 {
		t.Fatalf("expected amount 499, got %d", service.lastCompleted.Amount)
	}
}

func TestWebhookAcksCheckoutWithoutMetadata(t *testing.T) {
	service := &stubBillingManager{}
	handler := &BillingHandler{billingService: service, webhookSecret: webhookTestSecret}

	app := fiber.New()
	app.Post("/api/billing/webhook", handler.Webhook)

	payload := `{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_888", "amount_total": 100, "metadata": {}}}
	}`

	resp, err := app.Test(signedWebhookRequest(t, payload))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.completedCalled {
		t.Fatal("grant must not be applied without metadata")
	}
}

func TestWebhookSyncsProductCatalog(t *testing.T) {
	service := &stubBillingManager{}
	handler := &BillingHandler{billingService: service, webhookSecret: webhookTestSecret}

	app := fiber.New()
	app.Post("/api/billing/webhook", handler.Webhook)

	payload := `{
		"type": "product.updated",
		"data": {"object": {
			"id": "prod_coins",
			"name": "Coin pack",
			"active": true,
			"metadata": {"kind": "coins", "coin_amount": "500"}
		}}
	}`

	resp, err := app.Test(signedWebhookRequest(t, payload))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.syncedProducts) != 1 {
		t.Fatalf("expected one synced product, got %d", len(service.syncedProducts))
	}
	if service.syncedProducts[0].Kind != "coins" || service.syncedProducts[0].CoinAmount != 500 {
		t.Fatalf("unexpected product %+v", service.syncedProducts[0])
	}
}

func TestWebhookAcksUnknownEventTypes(t *testing.T) {
	service := &stubBillingManager{}
	handler := &BillingHandler{billingService: service, webhookSecret: webhookTestSecret}

	app := fiber.New()
	app.Post("/api/billing/webhook", handler.Webhook)

	resp, err := app.Test(signedWebhookRequest(t, `{"type": "invoice.paid", "data": {"object": {}}}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
