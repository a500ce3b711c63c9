package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment inside the caller's transaction so the paired
// comment_count increment commits atomically with it.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, authorID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, content, is_active, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, postID, authorID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Delete soft-deletes a comment. Only the comment author can delete.
// Returns the postID for the paired counter decrement.
func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (int64, error) {
	var comment struct {
		PostID   int64 `db:"post_id"`
		AuthorID int64 `db:"author_id"`
	}
	err := tx.GetContext(ctx, &comment, `
		SELECT post_id, author_id FROM comments WHERE id = $1 AND is_active = true
	`, commentID)
	if err == sql.ErrNoRows {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get comment: %w", err)
	}

	if comment.AuthorID != authorID {
		return 0, model.ErrNotCommentOwner
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE comments SET is_active = false WHERE id = $1
	`, commentID)
	if err != nil {
		return 0, fmt.Errorf("delete comment: %w", err)
	}

	return comment.PostID, nil
}

// GetByPostID returns one page of active comments on a post, oldest first,
// with author summaries joined.
func (r *commentRepository) GetByPostID(ctx context.Context, postID int64, limit, offset int) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.is_active, c.created_at,
		       a.username AS author_username, a.first_name AS author_first_name,
		       a.last_name AS author_last_name, a.avatar_url AS author_avatar_url
		FROM comments c
		JOIN profiles a ON a.id = c.author_id
		WHERE c.post_id = $1 AND c.is_active = true
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2 OFFSET $3
	`

	type commentRow struct {
		ID              int64     `db:"id"`
		PostID          int64     `db:"post_id"`
		AuthorID        int64     `db:"author_id"`
		Content         string    `db:"content"`
		IsActive        bool      `db:"is_active"`
		CreatedAt       time.Time `db:"created_at"`
		AuthorUsername  string    `db:"author_username"`
		AuthorFirstName *string   `db:"author_first_name"`
		AuthorLastName  *string   `db:"author_last_name"`
		AuthorAvatarURL *string   `db:"author_avatar_url"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:        row.ID,
			PostID:    row.PostID,
			AuthorID:  row.AuthorID,
			Content:   row.Content,
			IsActive:  row.IsActive,
			CreatedAt: row.CreatedAt,
			Author: &model.ProfileSummary{
				ID:        row.AuthorID,
				Username:  row.AuthorUsername,
				FirstName: row.AuthorFirstName,
				LastName:  row.AuthorLastName,
				AvatarURL: row.AuthorAvatarURL,
			},
		}
	}

	return comments, nil
}

// GetByID retrieves a single active comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, is_active, created_at
		FROM comments
		WHERE id = $1 AND is_active = true
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}
