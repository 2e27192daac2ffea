package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/SocialGoBack/internal/models"
)

// ErrDuplicatePurchase marks a webhook replay for an already-recorded
// checkout reference.
var ErrDuplicatePurchase = errors.New("purchase already recorded")

type BillingRepository struct {
	db DBTX
}

func NewBillingRepository(db DBTX) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, name, description, kind, coin_amount, tier, active, created_at
		FROM billing_products
		WHERE active = TRUE
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	index := make(map[string]int)
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Kind,
			&product.CoinAmount,
			&product.Tier,
			&product.Active,
			&product.CreatedAt,
		); err != nil {
			return nil, err
		}
		index[product.ID] = len(products)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	priceQuery := `
		SELECT id, product_id, unit_amount, currency, interval, active
		FROM billing_prices
		WHERE active = TRUE
		ORDER BY unit_amount
	`
	priceRows, err := r.db.Query(ctx, priceQuery)
	if err != nil {
		return nil, err
	}
	defer priceRows.Close()

	for priceRows.Next() {
		var price models.Price
		if err := priceRows.Scan(
			&price.ID,
			&price.ProductID,
			&price.UnitAmount,
			&price.Currency,
			&price.Interval,
			&price.Active,
		); err != nil {
			return nil, err
		}
		if i, ok := index[price.ProductID]; ok {
			products[i].Prices = append(products[i].Prices, price)
		}
	}
	if err := priceRows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *BillingRepository) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT id, name, description, kind, coin_amount, tier, active, created_at
		FROM billing_products
		WHERE id = $1
	`
	var product models.Product
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Kind,
		&product.CoinAmount,
		&product.Tier,
		&product.Active,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *BillingRepository) GetPrice(ctx context.Context, priceID string) (*models.Price, error) {
	query := `
		SELECT id, product_id, unit_amount, currency, interval, active
		FROM billing_prices
		WHERE id = $1
	`
	var price models.Price
	err := r.db.QueryRow(ctx, query, priceID).Scan(
		&price.ID,
		&price.ProductID,
		&price.UnitAmount,
		&price.Currency,
		&price.Interval,
		&price.Active,
	)
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// UpsertProduct mirrors catalog changes pushed by the processor's webhook.
func (r *BillingRepository) UpsertProduct(ctx context.Context, product models.Product) error {
	query := `
		INSERT INTO billing_products (id, name, description, kind, coin_amount, tier, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			description = EXCLUDED.description,
			kind = EXCLUDED.kind,
			coin_amount = EXCLUDED.coin_amount,
			tier = EXCLUDED.tier,
			active = EXCLUDED.active
	`
	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Kind,
		product.CoinAmount,
		product.Tier,
		product.Active,
	)
	return err
}

func (r *BillingRepository) UpsertPrice(ctx context.Context, price models.Price) error {
	query := `
		INSERT INTO billing_prices (id, product_id, unit_amount, currency, interval, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET product_id = EXCLUDED.product_id,
			unit_amount = EXCLUDED.unit_amount,
			currency = EXCLUDED.currency,
			interval = EXCLUDED.interval,
			active = EXCLUDED.active
	`
	_, err := r.db.Exec(ctx, query,
		price.ID,
		price.ProductID,
		price.UnitAmount,
		price.Currency,
		price.Interval,
		price.Active,
	)
	return err
}

type CreatePurchaseInput struct {
	UserID      string
	CheckoutRef string
	ProductID   string
	Kind        string
	Amount      int64
}

// CreatePurchase records a completed checkout. A replayed webhook for the
// same checkout reference returns ErrDuplicatePurchase so grants are applied
// at most once.
func (r *BillingRepository) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error) {
	query := `
		INSERT INTO purchases (user_id, checkout_ref, product_id, kind, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, checkout_ref, product_id, kind, amount, created_at
	`
	var purchase models.Purchase
	err := r.db.QueryRow(ctx, query,
		input.UserID,
		input.CheckoutRef,
		input.ProductID,
		input.Kind,
		input.Amount,
	).Scan(
		&purchase.ID,
		&purchase.UserID,
		&purchase.CheckoutRef,
		&purchase.ProductID,
		&purchase.Kind,
		&purchase.Amount,
		&purchase.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePurchase
		}
		return nil, err
	}
	return &purchase, nil
}
