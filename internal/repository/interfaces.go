package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id int64) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, profile *model.Profile) error
	Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error)
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	// SetActive flips the soft-deactivation flag (admin moderation)
	SetActive(ctx context.Context, userID int64, active bool) error
	List(ctx context.Context, limit, offset int) ([]model.Profile, error)
	CountProfiles(ctx context.Context) (total int, active int, err error)
	// Reconcile* recompute denormalized counters from the edge tables
	ReconcileFollowCounts(ctx context.Context, userID int64) error
	ReconcilePostsCount(ctx context.Context, userID int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error)
	GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	// GetFolloweeIDs returns the ids the user follows (feed author set)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	// Deactivate soft-deletes a post (author delete or admin moderation)
	Deactivate(ctx context.Context, tx *sqlx.Tx, postID int64) error
	GetAuthorID(ctx context.Context, postID int64) (int64, error)
	// GetFeedPage returns active posts by the given authors, newest first,
	// with author summaries joined
	GetFeedPage(ctx context.Context, authorIDs []int64, limit, offset int) ([]model.Post, error)
	GetByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error)
	List(ctx context.Context, limit, offset int) ([]model.Post, error)
	CountPosts(ctx context.Context) (total int, active int, err error)
	// CheckLikes checks which posts the user has liked
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	// Like methods
	Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	ReconcileLikeCount(ctx context.Context, postID int64) error
	ReconcileCommentCount(ctx context.Context, postID int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, postID, authorID int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (postID int64, err error)
	GetByPostID(ctx context.Context, postID int64, limit, offset int) ([]model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
}

type NotificationRepository interface {
	// Create inserts a new notification row and fills in its id/created_at
	Create(ctx context.Context, n *model.Notification) error
	// GetByRecipient returns a reverse-chronological page with sender summaries
	GetByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error)
	// MarkAsRead marks one notification read, scoped to the recipient
	MarkAsRead(ctx context.Context, recipientID, notificationID int64) error
	// MarkAllAsRead marks every unread notification for the recipient as read
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}
