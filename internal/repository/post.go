package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialink/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, author_id, content, image_url, category, like_count, comment_count, is_active, created_at, updated_at`

// postWithAuthor is the scan target for queries that join the author summary.
type postWithAuthor struct {
	model.Post
	AuthorUsername  string  `db:"author_username"`
	AuthorFirstName *string `db:"author_first_name"`
	AuthorLastName  *string `db:"author_last_name"`
	AuthorAvatarURL *string `db:"author_avatar_url"`
}

func (pw *postWithAuthor) toPost() model.Post {
	p := pw.Post
	p.Author = &model.ProfileSummary{
		ID:        p.AuthorID,
		Username:  pw.AuthorUsername,
		FirstName: pw.AuthorFirstName,
		LastName:  pw.AuthorLastName,
		AvatarURL: pw.AuthorAvatarURL,
	}
	return p
}

// Create inserts a new post inside the caller's transaction. The paired
// posts_count increment lives in the same transaction (service-owned).
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	query := `
		INSERT INTO posts (author_id, content, image_url, category)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns + `
	`
	err := tx.GetContext(ctx, post, query, post.AuthorID, post.Content, post.ImageURL, post.Category)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single active post with its author summary.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.category, p.like_count, p.comment_count,
		       p.is_active, p.created_at, p.updated_at,
		       a.username AS author_username, a.first_name AS author_first_name,
		       a.last_name AS author_last_name, a.avatar_url AS author_avatar_url
		FROM posts p
		JOIN profiles a ON a.id = p.author_id
		WHERE p.id = $1 AND p.is_active = true
	`
	var row postWithAuthor
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.toPost()
	return &post, nil
}

// Update persists an edited post's content and category.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts SET content = $1, category = $2, updated_at = NOW()
		WHERE id = $3 AND is_active = true
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, post.Content, post.Category, post.ID).Scan(&post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a post inside the caller's transaction.
func (r *postRepository) Deactivate(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	query := `UPDATE posts SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	result, err := tx.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("deactivate post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// GetAuthorID returns the author of a post (for notification fan-out).
func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT author_id FROM posts WHERE id = $1 AND is_active = true`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// GetFeedPage returns one page of active posts by the given authors,
// newest first with id as the tie-break so pages stay stable.
func (r *postRepository) GetFeedPage(ctx context.Context, authorIDs []int64, limit, offset int) ([]model.Post, error) {
	if len(authorIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.category, p.like_count, p.comment_count,
		       p.is_active, p.created_at, p.updated_at,
		       a.username AS author_username, a.first_name AS author_first_name,
		       a.last_name AS author_last_name, a.avatar_url AS author_avatar_url
		FROM posts p
		JOIN profiles a ON a.id = p.author_id
		WHERE p.author_id = ANY($1) AND p.is_active = true
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get feed page: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].toPost()
	}
	return posts, nil
}

// GetByAuthor returns one page of a single author's active posts, newest first.
func (r *postRepository) GetByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.category, p.like_count, p.comment_count,
		       p.is_active, p.created_at, p.updated_at,
		       a.username AS author_username, a.first_name AS author_first_name,
		       a.last_name AS author_last_name, a.avatar_url AS author_avatar_url
		FROM posts p
		JOIN profiles a ON a.id = p.author_id
		WHERE p.author_id = $1 AND p.is_active = true
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get posts by author: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].toPost()
	}
	return posts, nil
}

// List returns posts newest first, including deactivated ones (admin view).
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.category, p.like_count, p.comment_count,
		       p.is_active, p.created_at, p.updated_at,
		       a.username AS author_username, a.first_name AS author_first_name,
		       a.last_name AS author_last_name, a.avatar_url AS author_avatar_url
		FROM posts p
		JOIN profiles a ON a.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].toPost()
	}
	return posts, nil
}

func (r *postRepository) CountPosts(ctx context.Context) (int, int, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM posts`

	var total, active int
	err := r.db.QueryRowxContext(ctx, query).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count posts: %w", err)
	}
	return total, active, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post_id -> liked (true/false).
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// Like inserts a like record. Returns ErrAlreadyLiked if duplicate.
func (r *postRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	query := `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`
	_, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		// Unique constraint violation means the edge already exists
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrAlreadyLiked
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Unlike deletes a like record. Returns ErrNotLiked if not found.
func (r *postRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	query := `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// IncrementLikeCount atomically updates the like_count on a post.
// Floored at zero so a stray decrement can never drive it negative.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	query := `UPDATE posts SET like_count = GREATEST(like_count + $1, 0), updated_at = NOW() WHERE id = $2 AND is_active = true`
	result, err := tx.ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("update like count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// IncrementCommentCount atomically updates the comment_count on a post.
func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	query := `UPDATE posts SET comment_count = GREATEST(comment_count + $1, 0), updated_at = NOW() WHERE id = $2 AND is_active = true`
	result, err := tx.ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// ReconcileLikeCount recomputes like_count from the likes table.
func (r *postRepository) ReconcileLikeCount(ctx context.Context, postID int64) error {
	query := `
		UPDATE posts SET like_count = (SELECT COUNT(*) FROM likes WHERE post_id = $1)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("reconcile like count: %w", err)
	}
	return nil
}

// ReconcileCommentCount recomputes comment_count from active comments.
func (r *postRepository) ReconcileCommentCount(ctx context.Context, postID int64) error {
	query := `
		UPDATE posts SET comment_count = (SELECT COUNT(*) FROM comments WHERE post_id = $1 AND is_active = true)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("reconcile comment count: %w", err)
	}
	return nil
}
