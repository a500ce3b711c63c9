package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
	"socialink/internal/queue"
)

// Function-field mocks: each test overrides only the calls it cares about,
// everything else returns the zero behavior.

type mockProfileRepository struct {
	createFn                  func(ctx context.Context, profile *model.Profile) error
	getByIDFn                 func(ctx context.Context, id int64) (*model.Profile, error)
	getByUsernameFn           func(ctx context.Context, username string) (*model.Profile, error)
	existsByUsernameFn        func(ctx context.Context, username string) (bool, error)
	updateFn                  func(ctx context.Context, profile *model.Profile) error
	searchFn                  func(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error)
	incrementFollowerCountFn  func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	incrementFollowingCountFn func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	incrementPostsCountFn     func(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	setActiveFn               func(ctx context.Context, userID int64, active bool) error
	listFn                    func(ctx context.Context, limit, offset int) ([]model.Profile, error)
	countProfilesFn           func(ctx context.Context) (int, int, error)
	reconcileFollowCountsFn   func(ctx context.Context, userID int64) error
	reconcilePostsCountFn     func(ctx context.Context, userID int64) error
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepository) Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockProfileRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	if m.incrementFollowerCountFn != nil {
		return m.incrementFollowerCountFn(ctx, tx, userID, delta)
	}
	return nil
}

func (m *mockProfileRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	if m.incrementFollowingCountFn != nil {
		return m.incrementFollowingCountFn(ctx, tx, userID, delta)
	}
	return nil
}

func (m *mockProfileRepository) IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	if m.incrementPostsCountFn != nil {
		return m.incrementPostsCountFn(ctx, tx, userID, delta)
	}
	return nil
}

func (m *mockProfileRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, userID, active)
	}
	return nil
}

func (m *mockProfileRepository) List(ctx context.Context, limit, offset int) ([]model.Profile, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockProfileRepository) CountProfiles(ctx context.Context) (int, int, error) {
	if m.countProfilesFn != nil {
		return m.countProfilesFn(ctx)
	}
	return 0, 0, nil
}

func (m *mockProfileRepository) ReconcileFollowCounts(ctx context.Context, userID int64) error {
	if m.reconcileFollowCountsFn != nil {
		return m.reconcileFollowCountsFn(ctx, userID)
	}
	return nil
}

func (m *mockProfileRepository) ReconcilePostsCount(ctx context.Context, userID int64) error {
	if m.reconcilePostsCountFn != nil {
		return m.reconcilePostsCountFn(ctx, userID)
	}
	return nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	deleteFn         func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowersFn   func(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error)
	getFollowingFn   func(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	getFolloweeIDsFn func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.ProfileSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn                func(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	getByIDFn               func(ctx context.Context, postID int64) (*model.Post, error)
	updateFn                func(ctx context.Context, post *model.Post) error
	deactivateFn            func(ctx context.Context, tx *sqlx.Tx, postID int64) error
	getAuthorIDFn           func(ctx context.Context, postID int64) (int64, error)
	getFeedPageFn           func(ctx context.Context, authorIDs []int64, limit, offset int) ([]model.Post, error)
	getByAuthorFn           func(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error)
	listFn                  func(ctx context.Context, limit, offset int) ([]model.Post, error)
	countPostsFn            func(ctx context.Context) (int, int, error)
	checkLikesFn            func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	likeFn                  func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	unlikeFn                func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	incrementLikeCountFn    func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	incrementCommentCountFn func(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	reconcileLikeCountFn    func(ctx context.Context, postID int64) error
	reconcileCommentCountFn func(ctx context.Context, postID int64) error
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, post)
	}
	post.ID = 1
	post.IsActive = true
	post.CreatedAt = time.Now()
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Deactivate(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, tx, postID)
	}
	return nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) GetFeedPage(ctx context.Context, authorIDs []int64, limit, offset int) ([]model.Post, error) {
	if m.getFeedPageFn != nil {
		return m.getFeedPageFn(ctx, authorIDs, limit, offset)
	}
	return nil, nil
}

func (m *mockPostRepository) GetByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.Post, error) {
	if m.getByAuthorFn != nil {
		return m.getByAuthorFn(ctx, authorID, limit, offset)
	}
	return nil, nil
}

func (m *mockPostRepository) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockPostRepository) CountPosts(ctx context.Context) (int, int, error) {
	if m.countPostsFn != nil {
		return m.countPostsFn(ctx)
	}
	return 0, 0, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	if m.likeFn != nil {
		return m.likeFn(ctx, tx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, tx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	if m.incrementLikeCountFn != nil {
		return m.incrementLikeCountFn(ctx, tx, postID, delta)
	}
	return nil
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	if m.incrementCommentCountFn != nil {
		return m.incrementCommentCountFn(ctx, tx, postID, delta)
	}
	return nil
}

func (m *mockPostRepository) ReconcileLikeCount(ctx context.Context, postID int64) error {
	if m.reconcileLikeCountFn != nil {
		return m.reconcileLikeCountFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) ReconcileCommentCount(ctx context.Context, postID int64) error {
	if m.reconcileCommentCountFn != nil {
		return m.reconcileCommentCountFn(ctx, postID)
	}
	return nil
}

type mockCommentRepository struct {
	createFn      func(ctx context.Context, tx *sqlx.Tx, postID, authorID int64, content string) (*model.Comment, error)
	deleteFn      func(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (int64, error)
	getByPostIDFn func(ctx context.Context, postID int64, limit, offset int) ([]model.Comment, error)
	getByIDFn     func(ctx context.Context, commentID int64) (*model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, authorID int64, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, postID, authorID, content)
	}
	return &model.Comment{ID: 1, PostID: postID, AuthorID: authorID, Content: content, IsActive: true}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID, authorID int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, commentID, authorID)
	}
	return 0, model.ErrCommentNotFound
}

func (m *mockCommentRepository) GetByPostID(ctx context.Context, postID int64, limit, offset int) ([]model.Comment, error) {
	if m.getByPostIDFn != nil {
		return m.getByPostIDFn(ctx, postID, limit, offset)
	}
	return nil, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

type mockNotificationRepository struct {
	createFn         func(ctx context.Context, n *model.Notification) error
	getByRecipientFn func(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error)
	markAsReadFn     func(ctx context.Context, recipientID, notificationID int64) error
	markAllAsReadFn  func(ctx context.Context, recipientID int64) error
	getUnreadCountFn func(ctx context.Context, recipientID int64) (int, error)

	created []*model.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	m.created = append(m.created, n)
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	n.ID = int64(len(m.created))
	n.CreatedAt = time.Now()
	return nil
}

func (m *mockNotificationRepository) GetByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error) {
	if m.getByRecipientFn != nil {
		return m.getByRecipientFn(ctx, recipientID, limit, offset)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, recipientID, notificationID int64) error {
	if m.markAsReadFn != nil {
		return m.markAsReadFn(ctx, recipientID, notificationID)
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	if m.markAllAsReadFn != nil {
		return m.markAllAsReadFn(ctx, recipientID)
	}
	return nil
}

func (m *mockNotificationRepository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	if m.getUnreadCountFn != nil {
		return m.getUnreadCountFn(ctx, recipientID)
	}
	return 0, nil
}

type mockRefreshTokenRepository struct {
	createFn           func(ctx context.Context, token *model.RefreshToken) error
	findByTokenHashFn  func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	revokeFn           func(ctx context.Context, id string, replacedBy *string) error
	revokeAllForUserFn func(ctx context.Context, userID int64) error
	deleteExpiredFn    func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	token.ID = "token-id"
	token.CreatedAt = time.Now()
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	if m.findByTokenHashFn != nil {
		return m.findByTokenHashFn(ctx, tokenHash)
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id, replacedBy)
	}
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	if m.revokeAllForUserFn != nil {
		return m.revokeAllForUserFn(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, olderThan)
	}
	return 0, nil
}

// mockNotifier records fan-out calls made by the mutation services.
type mockNotifier struct {
	calls []notifierCall
	err   error
}

type notifierCall struct {
	RecipientID int64
	SenderID    int64
	Type        string
	PostID      *int64
}

func (m *mockNotifier) CreateNotification(ctx context.Context, recipientID, senderID int64, notifType string, postID *int64) error {
	m.calls = append(m.calls, notifierCall{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		PostID:      postID,
	})
	return m.err
}

// mockPublisher records reconcile events.
type mockPublisher struct {
	events []queue.ReconcileEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ReconcileEvent) (string, error) {
	m.events = append(m.events, event)
	if m.err != nil {
		return "", m.err
	}
	return "1-0", nil
}
