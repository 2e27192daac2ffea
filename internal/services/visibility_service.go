package services

import (
	"context"
	"sort"
	"time"

	"github.com/saeid-a/SocialGoBack/internal/geo"
	"github.com/saeid-a/SocialGoBack/internal/models"
)

type blockLister interface {
	ListBlockedIDs(ctx context.Context, blockerID string) (map[string]struct{}, error)
}

type broadcastLister interface {
	ListBroadcasting(ctx context.Context, excludeUserID string) ([]models.Profile, error)
}

type VisibilityService struct {
	blockRepo   blockLister
	profileRepo broadcastLister
	fuzzDegrees float64
}

func NewVisibilityService(blockRepo blockLister, profileRepo broadcastLister, fuzzDegrees float64) *VisibilityService {
	if fuzzDegrees <= 0 {
		fuzzDegrees = geo.DefaultFuzzDegrees
	}
	return &VisibilityService{
		blockRepo:   blockRepo,
		profileRepo: profileRepo,
		fuzzDegrees: fuzzDegrees,
	}
}

// GetNearbyUsers answers which profiles are visible to the requester right
// now, at fuzzed coordinates. Effective visibility is always recomputed from
// the expiry timestamp; the stored flag is never trusted on this path and is
// never rewritten here (the durable clear happens on the single-profile
// getter). Only blocks initiated by the requester filter the result. No
// geographic radius is applied: every unexpired broadcaster is a candidate.
func (s *VisibilityService) GetNearbyUsers(ctx context.Context, requesterID string) ([]models.NearbyUser, error) {
	blocked, err := s.blockRepo.ListBlockedIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.profileRepo.ListBroadcasting(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	visible := make([]models.NearbyUser, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if _, isBlocked := blocked[candidate.UserID]; isBlocked {
			continue
		}
		if !candidate.GoModeActive(now) {
			continue
		}
		if candidate.Latitude == nil || candidate.Longitude == nil {
			continue
		}

		// Fresh offset per request; the marker jitters between refreshes.
		lat, lng := geo.EphemeralFuzz(*candidate.Latitude, *candidate.Longitude, s.fuzzDegrees)
		visible = append(visible, models.NearbyUser{
			UserID:    candidate.UserID,
			Username:  candidate.Username,
			AvatarURL: stringValue(candidate.AvatarURL),
			Latitude:  lat,
			Longitude: lng,
			IsBoosted: candidate.BoostActive(now),
			LastSeen:  candidate.LastSeen,
		})
	}

	// UX ordering only, not part of the visibility contract: boosted
	// profiles first, then most recently seen.
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsBoosted != visible[j].IsBoosted {
			return visible[i].IsBoosted
		}
		return visible[i].LastSeen.After(visible[j].LastSeen)
	})

	return visible, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
