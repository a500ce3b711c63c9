package model

import (
	"errors"
	"strings"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *ProfileSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse is the paginated comment list response.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
	Page     int       `json:"page"`
	HasMore  bool      `json:"has_more"`
}

// Comment constraints
const (
	MaxCommentLength = 200
)

// ValidateCommentContent enforces the non-empty, max-length comment rule.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	if len([]rune(content)) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("content is required")
	ErrCommentTooLong  = errors.New("comment content too long")
)
