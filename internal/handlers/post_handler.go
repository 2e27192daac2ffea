package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

type postManager interface {
	CreatePost(ctx context.Context, input services.CreatePostInput, author services.PostAuthor) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
}

type PostHandler struct {
	postService postManager
}

func NewPostHandler(postService postManager) *PostHandler {
	return &PostHandler{postService: postService}
}

type createPostRequest struct {
	Content           string   `json:"content"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	HideExactLocation bool     `json:"hide_exact_location"`
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateCreatePostRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	post, err := h.postService.CreatePost(c.Context(), services.CreatePostInput{
		Content:           req.Content,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		HideExactLocation: req.HideExactLocation,
	}, services.PostAuthor{
		UserID:   userID,
		Username: currentUsername(c),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	if _, err := currentUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	posts, err := h.postService.ListPosts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(fiber.Map{"posts": posts})
}
