package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/repository"
)

var (
	ErrPriceNotFound  = errors.New("price not found")
	ErrInactivePrice  = errors.New("price is not active")
	ErrNoCustomer     = errors.New("no payment customer for profile")
	ErrUnknownProduct = errors.New("unknown product")
)

type billingStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetPrice(ctx context.Context, priceID string) (*models.Price, error)
	UpsertProduct(ctx context.Context, product models.Product) error
	UpsertPrice(ctx context.Context, price models.Price) error
	CreatePurchase(ctx context.Context, input repository.CreatePurchaseInput) (*models.Purchase, error)
}

type grantApplier interface {
	AddCoins(ctx context.Context, userID string, amount int) (*models.Profile, error)
	SetBoost(ctx context.Context, userID string, expiresAt time.Time) (*models.Profile, error)
	SetSubscriptionTier(ctx context.Context, userID string, tier string) (*models.Profile, error)
	SetPaymentCustomer(ctx context.Context, userID string, customerID string) error
}

// grantTx scopes a purchase record and its profile grant to one unit: either
// both writes land or neither does.
type grantTx interface {
	Run(ctx context.Context, fn func(billing billingStore, profiles grantApplier) error) error
}

// GrantTx is the pgx-backed grantTx. Both writes ride one transaction, so a
// failed grant rolls the purchase record back and the processor's retried
// delivery can apply the whole pair again.
type GrantTx struct {
	db *pgxpool.Pool
}

func NewGrantTx(db *pgxpool.Pool) *GrantTx {
	return &GrantTx{db: db}
}

func (g *GrantTx) Run(ctx context.Context, fn func(billing billingStore, profiles grantApplier) error) error {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(repository.NewBillingRepository(tx), repository.NewProfileRepository(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type BillingService struct {
	billingRepo   billingStore
	profileRepo   grantApplier
	grants        grantTx
	client        PaymentClient
	boostDuration time.Duration
}

func NewBillingService(billingRepo billingStore, profileRepo grantApplier, grants grantTx, client PaymentClient, boostDuration time.Duration) *BillingService {
	if boostDuration <= 0 {
		boostDuration = 30 * time.Minute
	}
	return &BillingService{
		billingRepo:   billingRepo,
		profileRepo:   profileRepo,
		grants:        grants,
		client:        client,
		boostDuration: boostDuration,
	}
}

func (s *BillingService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.billingRepo.ListProducts(ctx)
}

type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout starts a processor-hosted checkout for the given price. A
// missing payment customer is created on demand and persisted on the
// profile.
func (s *BillingService) CreateCheckout(ctx context.Context, profile *models.Profile, priceID, successURL, cancelURL string) (*CheckoutResult, error) {
	price, err := s.billingRepo.GetPrice(ctx, priceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPriceNotFound
		}
		return nil, err
	}
	if !price.Active {
		return nil, ErrInactivePrice
	}

	customerID, err := s.ensureCustomer(ctx, profile)
	if err != nil {
		return nil, err
	}

	mode := "payment"
	if price.Interval != nil {
		mode = "subscription"
	}

	session, err := s.client.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID:      customerID,
		PriceID:         price.ID,
		Mode:            mode,
		ClientReference: uuid.NewString(),
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
		UserID:          profile.UserID,
		ProductID:       price.ProductID,
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// CreatePortal opens the processor's self-service billing portal.
func (s *BillingService) CreatePortal(ctx context.Context, profile *models.Profile, returnURL string) (string, error) {
	if profile.PaymentCustomer == nil || *profile.PaymentCustomer == "" {
		return "", ErrNoCustomer
	}
	return s.client.CreatePortalSession(ctx, *profile.PaymentCustomer, returnURL)
}

func (s *BillingService) ensureCustomer(ctx context.Context, profile *models.Profile) (string, error) {
	if profile.PaymentCustomer != nil && *profile.PaymentCustomer != "" {
		return *profile.PaymentCustomer, nil
	}
	customerID, err := s.client.CreateCustomer(ctx, profile.UserID, profile.Username)
	if err != nil {
		return "", err
	}
	if err := s.profileRepo.SetPaymentCustomer(ctx, profile.UserID, customerID); err != nil {
		return "", err
	}
	profile.PaymentCustomer = &customerID
	return customerID, nil
}

type CheckoutCompletedEvent struct {
	CheckoutRef string
	UserID      string
	ProductID   string
	Amount      int64
}

// HandleCheckoutCompleted records the purchase and applies its grant to the
// profile in one transaction. A failed grant rolls the purchase record back,
// leaving the retried delivery free to apply the pair from scratch; a
// replayed event for an already-recorded checkout reference is acknowledged
// without applying the grant twice.
func (s *BillingService) HandleCheckoutCompleted(ctx context.Context, event CheckoutCompletedEvent) error {
	product, err := s.billingRepo.GetProduct(ctx, event.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnknownProduct
		}
		return err
	}

	err = s.grants.Run(ctx, func(billing billingStore, profiles grantApplier) error {
		if _, err := billing.CreatePurchase(ctx, repository.CreatePurchaseInput{
			UserID:      event.UserID,
			CheckoutRef: event.CheckoutRef,
			ProductID:   product.ID,
			Kind:        product.Kind,
			Amount:      event.Amount,
		}); err != nil {
			return err
		}

		var err error
		switch product.Kind {
		case models.ProductKindCoins:
			_, err = profiles.AddCoins(ctx, event.UserID, product.CoinAmount)
		case models.ProductKindBoost:
			_, err = profiles.SetBoost(ctx, event.UserID, time.Now().UTC().Add(s.boostDuration))
		case models.ProductKindSubscription:
			tier := "premium"
			if product.Tier != nil {
				tier = *product.Tier
			}
			_, err = profiles.SetSubscriptionTier(ctx, event.UserID, tier)
		default:
			err = ErrUnknownProduct
		}
		return err
	})
	if errors.Is(err, repository.ErrDuplicatePurchase) {
		return nil
	}
	return err
}

// SyncProduct and SyncPrice mirror catalog webhook events into the
// read-through tables.
func (s *BillingService) SyncProduct(ctx context.Context, product models.Product) error {
	return s.billingRepo.UpsertProduct(ctx, product)
}

func (s *BillingService) SyncPrice(ctx context.Context, price models.Price) error {
	return s.billingRepo.UpsertPrice(ctx, price)
}
