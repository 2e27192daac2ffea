package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/SocialGoBack/internal/geo"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/repository"
)

type postStore interface {
	Create(ctx context.Context, input repository.CreatePostInput) (*models.Post, error)
	ListNewestFirst(ctx context.Context) ([]models.Post, error)
}

type authorProfileReader interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

type PostService struct {
	postRepo      postStore
	profileRepo   authorProfileReader
	jitterDegrees float64
}

func NewPostService(postRepo postStore, profileRepo authorProfileReader, jitterDegrees float64) *PostService {
	if jitterDegrees <= 0 {
		jitterDegrees = geo.DefaultJitterDegrees
	}
	return &PostService{
		postRepo:      postRepo,
		profileRepo:   profileRepo,
		jitterDegrees: jitterDegrees,
	}
}

type CreatePostInput struct {
	Content           string
	Latitude          *float64
	Longitude         *float64
	HideExactLocation bool
}

type PostAuthor struct {
	UserID   string
	Username string
}

// CreatePost persists a post after applying the two location policies. A
// post's location must never leak a non-broadcasting author's whereabouts,
// so submitted coordinates are dropped unless the author is effectively in
// Go Mode at creation time. When the author asks to hide the exact location,
// a one-time jitter replaces the submitted coordinate before it is stored.
// The stored author name is the profile's persisted username, which may carry
// a uniqueness suffix the token claim does not.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput, author PostAuthor) (*models.Post, error) {
	lat, lng := input.Latitude, input.Longitude
	authorName := author.Username

	profile, err := s.profileRepo.GetByUserID(ctx, author.UserID)
	switch {
	case err == nil:
		authorName = profile.Username
		if lat != nil && lng != nil && !profile.GoModeActive(time.Now().UTC()) {
			lat, lng = nil, nil
		}
	case errors.Is(err, pgx.ErrNoRows):
		// No profile yet: the claim name stands and there is no location
		// state to protect.
	default:
		return nil, err
	}

	if input.HideExactLocation && lat != nil && lng != nil {
		jlat, jlng := geo.PersistedJitter(*lat, *lng, s.jitterDegrees)
		lat, lng = &jlat, &jlng
	}

	authorID := author.UserID
	return s.postRepo.Create(ctx, repository.CreatePostInput{
		Content:           input.Content,
		Latitude:          lat,
		Longitude:         lng,
		AuthorUsername:    authorName,
		AuthorID:          &authorID,
		HideExactLocation: input.HideExactLocation,
	})
}

// ListPosts returns every post, newest first. No pagination in current scope.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListNewestFirst(ctx)
}
