package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/repository"
)

type stubBillingStore struct {
	products  map[string]*models.Product
	prices    map[string]*models.Price
	purchases map[string]repository.CreatePurchaseInput
}

func newStubBillingStore() *stubBillingStore {
	return &stubBillingStore{
		products:  make(map[string]*models.Product),
		prices:    make(map[string]*models.Price),
		purchases: make(map[string]repository.CreatePurchaseInput),
	}
}

func (s *stubBillingStore) ListProducts(_ context.Context) ([]models.Product, error) {
	var products []models.Product
	for _, product := range s.products {
		products = append(products, *product)
	}
	return products, nil
}

func (s *stubBillingStore) GetProduct(_ context.Context, productID string) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return product, nil
}

func (s *stubBillingStore) GetPrice(_ context.Context, priceID string) (*models.Price, error) {
	price, ok := s.prices[priceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return price, nil
}

func (s *stubBillingStore) UpsertProduct(_ context.Context, product models.Product) error {
	s.products[product.ID] = &product
	return nil
}

func (s *stubBillingStore) UpsertPrice(_ context.Context, price models.Price) error {
	s.prices[price.ID] = &price
	return nil
}

func (s *stubBillingStore) CreatePurchase(_ context.Context, input repository.CreatePurchaseInput) (*models.Purchase, error) {
	if _, exists := s.purchases[input.CheckoutRef]; exists {
		return nil, repository.ErrDuplicatePurchase
	}
	s.purchases[input.CheckoutRef] = input
	return &models.Purchase{
		ID:          int64(len(s.purchases)),
		UserID:      input.UserID,
		CheckoutRef: input.CheckoutRef,
		ProductID:   input.ProductID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type stubGrantApplier struct {
	coins            map[string]int
	boosts           map[string]time.Time
	tiers            map[string]string
	customers        map[string]string
	addCoinsFailures int
}

func newStubGrantApplier() *stubGrantApplier {
	return &stubGrantApplier{
		coins:     make(map[string]int),
		boosts:    make(map[string]time.Time),
		tiers:     make(map[string]string),
		customers: make(map[string]string),
	}
}

func (s *stubGrantApplier) AddCoins(_ context.Context, userID string, amount int) (*models.Profile, error) {
	if s.addCoinsFailures > 0 {
		s.addCoinsFailures--
		return nil, errors.New("write timeout")
	}
	s.coins[userID] += amount
	return &models.Profile{UserID: userID, Coins: s.coins[userID]}, nil
}

func (s *stubGrantApplier) SetBoost(_ context.Context, userID string, expiresAt time.Time) (*models.Profile, error) {
	s.boosts[userID] = expiresAt
	return &models.Profile{UserID: userID, IsBoosted: true, BoostExpiresAt: &expiresAt}, nil
}

func (s *stubGrantApplier) SetSubscriptionTier(_ context.Context, userID string, tier string) (*models.Profile, error) {
	s.tiers[userID] = tier
	return &models.Profile{UserID: userID, SubscriptionTier: tier}, nil
}

func (s *stubGrantApplier) SetPaymentCustomer(_ context.Context, userID string, customerID string) error {
	s.customers[userID] = customerID
	return nil
}

// stubGrantTx mirrors the transactional contract: writes made inside a
// failed run are discarded.
type stubGrantTx struct {
	billing  *stubBillingStore
	profiles *stubGrantApplier
}

func (s *stubGrantTx) Run(_ context.Context, fn func(billing billingStore, profiles grantApplier) error) error {
	snapshot := make(map[string]repository.CreatePurchaseInput, len(s.billing.purchases))
	for ref, input := range s.billing.purchases {
		snapshot[ref] = input
	}
	if err := fn(s.billing, s.profiles); err != nil {
		s.billing.purchases = snapshot
		return err
	}
	return nil
}

func newBillingService(store *stubBillingStore, grants *stubGrantApplier, client *stubPaymentClient) *BillingService {
	return NewBillingService(store, grants, &stubGrantTx{billing: store, profiles: grants}, client, 30*time.Minute)
}

type stubPaymentClient struct {
	customers int
	sessions  []CheckoutParams
}

func (s *stubPaymentClient) CreateCustomer(_ context.Context, userID, _ string) (string, error) {
	s.customers++
	return "cus_" + userID, nil
}

func (s *stubPaymentClient) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	s.sessions = append(s.sessions, params)
	return &CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (s *stubPaymentClient) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	return "https://pay.example/portal/" + customerID, nil
}

func TestCreateCheckoutCreatesCustomerOnDemand(t *testing.T) {
	store := newStubBillingStore()
	store.prices["price_1"] = &models.Price{ID: "price_1", ProductID: "prod_1", UnitAmount: 500, Currency: "usd", Active: true}
	grants := newStubGrantApplier()
	client := &stubPaymentClient{}
	service := newBillingService(store, grants, client)

	profile := &models.Profile{UserID: "u1", Username: "ana"}
	result, err := service.CreateCheckout(context.Background(), profile, "price_1", "https://app/success", "https://app/cancel")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}

	if result.URL == "" || result.SessionID != "cs_test" {
		t.Fatalf("unexpected checkout result: %+v", result)
	}
	if client.customers != 1 || grants.customers["u1"] != "cus_u1" {
		t.Fatalf("expected customer created and persisted")
	}
	if client.sessions[0].Mode != "payment" {
		t.Fatalf("expected one-time payment mode, got %s", client.sessions[0].Mode)
	}
}

func TestCreateCheckoutUsesSubscriptionModeForRecurringPrice(t *testing.T) {
	interval := "month"
	store := newStubBillingStore()
	store.prices["price_sub"] = &models.Price{ID: "price_sub", ProductID: "prod_sub", UnitAmount: 999, Currency: "usd", Interval: &interval, Active: true}
	client := &stubPaymentClient{}
	service := newBillingService(store, newStubGrantApplier(), client)

	customer := "cus_existing"
	profile := &models.Profile{UserID: "u1", Username: "ana", PaymentCustomer: &customer}
	if _, err := service.CreateCheckout(context.Background(), profile, "price_sub", "https://app/s", "https://app/c"); err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if client.customers != 0 {
		t.Fatalf("expected existing customer reused")
	}
	if client.sessions[0].Mode != "subscription" {
		t.Fatalf("expected subscription mode, got %s", client.sessions[0].Mode)
	}
}

func TestCreateCheckoutUnknownPrice(t *testing.T) {
	service := newBillingService(newStubBillingStore(), newStubGrantApplier(), &stubPaymentClient{})
	if _, err := service.CreateCheckout(context.Background(), &models.Profile{UserID: "u"}, "nope", "s", "c"); err != ErrPriceNotFound {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestHandleCheckoutCompletedGrantsByKind(t *testing.T) {
	tier := "premium"
	store := newStubBillingStore()
	store.products["prod_coins"] = &models.Product{ID: "prod_coins", Kind: models.ProductKindCoins, CoinAmount: 100, Active: true}
	store.products["prod_boost"] = &models.Product{ID: "prod_boost", Kind: models.ProductKindBoost, Active: true}
	store.products["prod_sub"] = &models.Product{ID: "prod_sub", Kind: models.ProductKindSubscription, Tier: &tier, Active: true}
	grants := newStubGrantApplier()
	service := newBillingService(store, grants, &stubPaymentClient{})

	events := []CheckoutCompletedEvent{
		{CheckoutRef: "ref1", UserID: "u1", ProductID: "prod_coins", Amount: 500},
		{CheckoutRef: "ref2", UserID: "u1", ProductID: "prod_boost", Amount: 300},
		{CheckoutRef: "ref3", UserID: "u1", ProductID: "prod_sub", Amount: 999},
	}
	for _, event := range events {
		if err := service.HandleCheckoutCompleted(context.Background(), event); err != nil {
			t.Fatalf("HandleCheckoutCompleted(%s): %v", event.ProductID, err)
		}
	}

	if grants.coins["u1"] != 100 {
		t.Fatalf("expected 100 coins granted, got %d", grants.coins["u1"])
	}
	boostUntil, ok := grants.boosts["u1"]
	if !ok || time.Until(boostUntil) > 31*time.Minute || time.Until(boostUntil) < 29*time.Minute {
		t.Fatalf("expected boost about 30m out, got %v", boostUntil)
	}
	if grants.tiers["u1"] != "premium" {
		t.Fatalf("expected premium tier, got %s", grants.tiers["u1"])
	}
}

func TestHandleCheckoutCompletedReplayIsIdempotent(t *testing.T) {
	store := newStubBillingStore()
	store.products["prod_coins"] = &models.Product{ID: "prod_coins", Kind: models.ProductKindCoins, CoinAmount: 100, Active: true}
	grants := newStubGrantApplier()
	service := newBillingService(store, grants, &stubPaymentClient{})

	event := CheckoutCompletedEvent{CheckoutRef: "ref1", UserID: "u1", ProductID: "prod_coins", Amount: 500}
	if err := service.HandleCheckoutCompleted(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := service.HandleCheckoutCompleted(context.Background(), event); err != nil {
		t.Fatalf("replay should be acknowledged: %v", err)
	}
	if grants.coins["u1"] != 100 {
		t.Fatalf("expected grant applied once, got %d coins", grants.coins["u1"])
	}
}

func TestCreatePortalRequiresCustomer(t *testing.T) {
	service := newBillingService(newStubBillingStore(), newStubGrantApplier(), &stubPaymentClient{})
	if _, err := service.CreatePortal(context.Background(), &models.Profile{UserID: "u"}, "https://app"); err != ErrNoCustomer {
		t.Fatalf("expected ErrNoCustomer, got %v", err)
	}
}

func TestHandleCheckoutCompletedRetryAfterFailedGrant(t *testing.T) {
	store := newStubBillingStore()
	store.products["prod_coins"] = &models.Product{ID: "prod_coins", Kind: models.ProductKindCoins, CoinAmount: 100, Active: true}
	grants := newStubGrantApplier()
	grants.addCoinsFailures = 1
	service := newBillingService(store, grants, &stubPaymentClient{})

	event := CheckoutCompletedEvent{CheckoutRef: "ref1", UserID: "u1", ProductID: "prod_coins", Amount: 500}
	if err := service.HandleCheckoutCompleted(context.Background(), event); err == nil {
		t.Fatal("expected first delivery to fail when the grant write fails")
	}
	if _, recorded := store.purchases["ref1"]; recorded {
		t.Fatal("purchase record must roll back with the failed grant")
	}

	if err := service.HandleCheckoutCompleted(context.Background(), event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if grants.coins["u1"] != 100 {
		t.Fatalf("expected 100 coins after redelivery, got %d", grants.coins["u1"])
	}
}
