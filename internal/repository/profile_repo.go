package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/SocialGoBack/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const profileColumns = `user_id, username, avatar_url, is_go_mode, go_mode_expires_at,
		   latitude, longitude, last_seen, is_boosted, boost_expires_at,
		   instagram, snapchat, twitter, coins, payment_customer_id, subscription_tier,
		   created_at, updated_at`

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, userID, username string, avatarURL *string) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, username, avatar_url, last_seen)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, username, avatarURL))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID))
}

// ListBroadcasting returns every profile with the Go Mode flag set and stored
// coordinates, excluding the requester. Expiry filtering happens in the
// service from the returned timestamps; this scan never rewrites the flag.
func (r *ProfileRepository) ListBroadcasting(ctx context.Context, excludeUserID string) ([]models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_go_mode = TRUE
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL
		  AND user_id <> $1
	`
	rows, err := r.db.Query(ctx, query, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *ProfileRepository) UpdateLocation(ctx context.Context, userID string, lat, lng float64) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET latitude = $2, longitude = $3, last_seen = NOW(), updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, lat, lng))
}

func (r *ProfileRepository) EnableGoMode(ctx context.Context, userID string, expiresAt time.Time) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_go_mode = TRUE, go_mode_expires_at = $2, last_seen = NOW(), updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, expiresAt))
}

func (r *ProfileRepository) DisableGoMode(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_go_mode = FALSE, go_mode_expires_at = NULL, last_seen = NOW(), updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ProfileRepository) ClearExpiredGoMode(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_go_mode = FALSE, go_mode_expires_at = NULL, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *ProfileRepository) ClearExpiredBoost(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_boosted = FALSE, boost_expires_at = NULL, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID))
}

type UpdateSocialLinksInput struct {
	Instagram *string
	Snapchat  *string
	Twitter   *string
}

func (r *ProfileRepository) UpdateSocialLinks(ctx context.Context, userID string, input UpdateSocialLinksInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET instagram = COALESCE($2, instagram),
			snapchat = COALESCE($3, snapchat),
			twitter = COALESCE($4, twitter),
			last_seen = NOW(),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, input.Instagram, input.Snapchat, input.Twitter))
}

func (r *ProfileRepository) AddCoins(ctx context.Context, userID string, amount int) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET coins = coins + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, amount))
}

func (r *ProfileRepository) SetBoost(ctx context.Context, userID string, expiresAt time.Time) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET is_boosted = TRUE, boost_expires_at = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, expiresAt))
}

func (r *ProfileRepository) SetSubscriptionTier(ctx context.Context, userID string, tier string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET subscription_tier = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(r.db.QueryRow(ctx, query, userID, tier))
}

func (r *ProfileRepository) SetPaymentCustomer(ctx context.Context, userID string, customerID string) error {
	query := `
		UPDATE profiles
		SET payment_customer_id = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, customerID)
	return err
}

func (r *ProfileRepository) scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.UserID,
		&profile.Username,
		&profile.AvatarURL,
		&profile.IsGoMode,
		&profile.GoModeExpiresAt,
		&profile.Latitude,
		&profile.Longitude,
		&profile.LastSeen,
		&profile.IsBoosted,
		&profile.BoostExpiresAt,
		&profile.Instagram,
		&profile.Snapchat,
		&profile.Twitter,
		&profile.Coins,
		&profile.PaymentCustomer,
		&profile.SubscriptionTier,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
