package models

import "time"

type Post struct {
	ID                int64     `json:"id"`
	Content           string    `json:"content"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	AuthorUsername    string    `json:"author_username"`
	AuthorID          *string   `json:"author_id,omitempty"`
	HideExactLocation bool      `json:"hide_exact_location"`
	CreatedAt         time.Time `json:"created_at"`
}
