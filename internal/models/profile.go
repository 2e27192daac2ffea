package models

import "time"

type Profile struct {
	UserID           string     `json:"user_id"`
	Username         string     `json:"username"`
	AvatarURL        *string    `json:"avatar_url"`
	IsGoMode         bool       `json:"is_go_mode"`
	GoModeExpiresAt  *time.Time `json:"go_mode_expires_at"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	LastSeen         time.Time  `json:"last_seen"`
	IsBoosted        bool       `json:"is_boosted"`
	BoostExpiresAt   *time.Time `json:"boost_expires_at"`
	Instagram        *string    `json:"instagram"`
	Snapchat         *string    `json:"snapchat"`
	Twitter          *string    `json:"twitter"`
	Coins            int        `json:"coins"`
	PaymentCustomer  *string    `json:"-"`
	SubscriptionTier string     `json:"subscription_tier"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GoModeActive reports whether the profile is effectively broadcasting at the
// given instant. The stored flag alone is not enough: an expiry in the past
// means the profile is no longer visible even if the flag has not been
// lazily cleared yet.
func (p *Profile) GoModeActive(now time.Time) bool {
	if !p.IsGoMode {
		return false
	}
	if p.GoModeExpiresAt != nil && p.GoModeExpiresAt.Before(now) {
		return false
	}
	return true
}

// BoostActive mirrors GoModeActive for the boost pair.
func (p *Profile) BoostActive(now time.Time) bool {
	if !p.IsBoosted {
		return false
	}
	if p.BoostExpiresAt != nil && p.BoostExpiresAt.Before(now) {
		return false
	}
	return true
}

// NearbyUser is the wire shape of one visible profile. Latitude and longitude
// carry the fuzzed coordinates, never the stored ones.
type NearbyUser struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsBoosted bool      `json:"is_boosted"`
	LastSeen  time.Time `json:"last_seen"`
}
