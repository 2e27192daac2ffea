package models

import "time"

// Product kinds determine which profile fields a completed checkout mutates.
const (
	ProductKindSubscription = "subscription"
	ProductKindBoost        = "boost"
	ProductKindCoins        = "coins"
)

// Product rows are read-through copies of the payment processor's catalog,
// kept in sync by webhook events. The server never creates products itself.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Kind        string    `json:"kind"`
	CoinAmount  int       `json:"coin_amount,omitempty"`
	Tier        *string   `json:"tier,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	Prices      []Price   `json:"prices,omitempty"`
}

type Price struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	UnitAmount int64   `json:"unit_amount"`
	Currency   string  `json:"currency"`
	Interval   *string `json:"interval"`
	Active     bool    `json:"active"`
}

type Purchase struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	CheckoutRef string    `json:"checkout_ref"`
	ProductID   string    `json:"product_id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}
