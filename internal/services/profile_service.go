package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

const usernameCollisionRetries = 3

type profileStore interface {
	Create(ctx context.Context, userID, username string, avatarURL *string) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateLocation(ctx context.Context, userID string, lat, lng float64) (*models.Profile, error)
	EnableGoMode(ctx context.Context, userID string, expiresAt time.Time) (*models.Profile, error)
	DisableGoMode(ctx context.Context, userID string) (*models.Profile, error)
	ClearExpiredGoMode(ctx context.Context, userID string) (*models.Profile, error)
	ClearExpiredBoost(ctx context.Context, userID string) (*models.Profile, error)
	UpdateSocialLinks(ctx context.Context, userID string, input repository.UpdateSocialLinksInput) (*models.Profile, error)
}

type ProfileService struct {
	profileRepo    profileStore
	goModeDuration time.Duration
}

func NewProfileService(profileRepo profileStore, goModeDuration time.Duration) *ProfileService {
	if goModeDuration <= 0 {
		goModeDuration = time.Hour
	}
	return &ProfileService{
		profileRepo:    profileRepo,
		goModeDuration: goModeDuration,
	}
}

// GetProfile is the lazy-expiry getter: the only path that durably clears an
// expired Go Mode or Boost. The list path filters by timestamp but leaves
// storage untouched, so a profile nobody re-reads individually can keep a
// stale flag until its next direct read.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if profile.IsGoMode && !profile.GoModeActive(now) {
		profile, err = s.profileRepo.ClearExpiredGoMode(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	if profile.IsBoosted && !profile.BoostActive(now) {
		profile, err = s.profileRepo.ClearExpiredBoost(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// EnsureProfile creates a missing profile from the identity provider's
// claims on first contact. Usernames are unique; a collision with another
// user's claim gets a short random suffix.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID, username string, avatarURL *string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "user_" + shortSuffix()
	}

	candidate := username
	for attempt := 0; attempt <= usernameCollisionRetries; attempt++ {
		profile, err = s.profileRepo.Create(ctx, userID, candidate, avatarURL)
		if err == nil {
			return profile, nil
		}
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
			return nil, err
		}
		// A concurrent first request may have created the row already.
		if existing, getErr := s.profileRepo.GetByUserID(ctx, userID); getErr == nil {
			return existing, nil
		}
		candidate = username + "_" + shortSuffix()
	}
	return nil, err
}

type StatusUpdateInput struct {
	Latitude  *float64
	Longitude *float64
	GoMode    *bool
	Instagram *string
	Snapchat  *string
	Twitter   *string
}

// UpdateStatus applies a status write: location ping, Go Mode toggle, and
// social-link edits, in that order. Every variant refreshes last_seen.
func (s *ProfileService) UpdateStatus(ctx context.Context, userID string, input StatusUpdateInput) (*models.Profile, error) {
	var profile *models.Profile
	var err error

	if input.Latitude != nil && input.Longitude != nil {
		profile, err = s.profileRepo.UpdateLocation(ctx, userID, *input.Latitude, *input.Longitude)
		if err != nil {
			return nil, mapNoRows(err)
		}
	}

	if input.GoMode != nil {
		if *input.GoMode {
			profile, err = s.profileRepo.EnableGoMode(ctx, userID, time.Now().UTC().Add(s.goModeDuration))
		} else {
			profile, err = s.profileRepo.DisableGoMode(ctx, userID)
		}
		if err != nil {
			return nil, mapNoRows(err)
		}
	}

	if input.Instagram != nil || input.Snapchat != nil || input.Twitter != nil {
		profile, err = s.profileRepo.UpdateSocialLinks(ctx, userID, repository.UpdateSocialLinksInput{
			Instagram: input.Instagram,
			Snapchat:  input.Snapchat,
			Twitter:   input.Twitter,
		})
		if err != nil {
			return nil, mapNoRows(err)
		}
	}

	if profile == nil {
		return s.GetProfile(ctx, userID)
	}
	return profile, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}

func shortSuffix() string {
	return uuid.NewString()[:8]
}
