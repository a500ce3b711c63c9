package model

import (
	"errors"
	"strings"
	"time"
)

// Post represents a short text post, optionally with an attached image.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	AuthorID     int64     `db:"author_id" json:"author_id"`
	Content      string    `db:"content" json:"content"`
	ImageURL     *string   `db:"image_url" json:"image_url"`
	Category     string    `db:"category" json:"category"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields (not in posts table)
	Author  *ProfileSummary `json:"author,omitempty"`
	IsLiked bool            `json:"is_liked"`
}

// FeedResponse is the paginated feed response.
type FeedResponse struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
}

// PostListResponse is the paginated post list response (profile page, admin).
type PostListResponse struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
	Category string  `json:"category"`
}

// UpdatePostRequest is the request body for editing a post.
type UpdatePostRequest struct {
	Content  string  `json:"content"`
	Category *string `json:"category"`
}

// Post constraints
const (
	MaxPostContentLength = 280
	DefaultPostCategory  = "general"
)

// ValidatePostContent enforces the non-empty, max-length content rule shared
// by create and edit.
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	if len([]rune(content)) > MaxPostContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrAlreadyLiked   = errors.New("post already liked")
	ErrNotLiked       = errors.New("post not liked")
	ErrContentTooLong = errors.New("content too long")
)
