package repository

import (
	"context"

	"github.com/saeid-a/SocialGoBack/internal/models"
)

type CreatePostInput struct {
	Content           string
	Latitude          *float64
	Longitude         *float64
	AuthorUsername    string
	AuthorID          *string
	HideExactLocation bool
}

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	query := `
		INSERT INTO posts (content, latitude, longitude, author_username, author_id, hide_exact_location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, content, latitude, longitude, author_username, author_id, hide_exact_location, created_at
	`
	var post models.Post
	err := r.db.QueryRow(ctx, query,
		input.Content,
		input.Latitude,
		input.Longitude,
		input.AuthorUsername,
		input.AuthorID,
		input.HideExactLocation,
	).Scan(
		&post.ID,
		&post.Content,
		&post.Latitude,
		&post.Longitude,
		&post.AuthorUsername,
		&post.AuthorID,
		&post.HideExactLocation,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) ListNewestFirst(ctx context.Context) ([]models.Post, error) {
	query := `
		SELECT id, content, latitude, longitude, author_username, author_id, hide_exact_location, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID,
			&post.Content,
			&post.Latitude,
			&post.Longitude,
			&post.AuthorUsername,
			&post.AuthorID,
			&post.HideExactLocation,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
