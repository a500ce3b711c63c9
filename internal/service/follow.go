package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"socialink/internal/model"
	"socialink/internal/queue"
	"socialink/internal/repository"
)

type FollowService struct {
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
	db          *sqlx.DB
	notifier    Notifier
	publisher   queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	profileRepo repository.ProfileRepository,
	db *sqlx.DB,
	notifier Notifier,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo:  followRepo,
		profileRepo: profileRepo,
		db:          db,
		notifier:    notifier,
		publisher:   publisher,
	}
}

// Follow creates the edge and moves both counters in one transaction.
// A duplicate follow returns ErrAlreadyFollowing without touching counters.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	followee, err := s.profileRepo.GetByID(ctx, followeeID)
	if err != nil {
		return err
	}
	if !followee.IsActive {
		return model.ErrProfileNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.followRepo.Create(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}

	if !inserted {
		return model.ErrAlreadyFollowing
	}

	if err := s.profileRepo.IncrementFollowerCount(ctx, tx, followeeID, 1); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementFollowingCount(ctx, tx, followerID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Fan-out after commit: the edge is durable even if the notification fails
	if s.notifier != nil {
		if err := s.notifier.CreateNotification(ctx, followeeID, followerID, model.NotificationTypeFollow, nil); err != nil {
			log.Printf("[FollowService] Follow notification FAILED: follower=%d followee=%d err=%v",
				followerID, followeeID, err)
		}
	}

	s.publishReconcile(ctx, followerID, followeeID)

	log.Printf("[FollowService] Follow OK: follower=%d followee=%d", followerID, followeeID)
	return nil
}

// Unfollow removes the edge and moves both counters in one transaction.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.followRepo.Delete(ctx, tx, followerID, followeeID); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementFollowerCount(ctx, tx, followeeID, -1); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementFollowingCount(ctx, tx, followerID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.publishReconcile(ctx, followerID, followeeID)

	log.Printf("[FollowService] Unfollow OK: follower=%d followee=%d", followerID, followeeID)
	return nil
}

// publishReconcile queues a counter recomputation for both sides of the edge.
// Best-effort, after commit.
func (s *FollowService) publishReconcile(ctx context.Context, followerID, followeeID int64) {
	if s.publisher == nil {
		return
	}
	for _, userID := range []int64{followerID, followeeID} {
		event := queue.NewReconcileFollowsEvent(userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamReconcile, event); err != nil {
			log.Printf("[FollowService] Failed to publish reconcile event: user=%d err=%v", userID, err)
		}
	}
}

// GetFollowers retrieves one page of users who follow the specified user.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	page, limit = clampPage(page, limit)

	users, err := s.followRepo.GetFollowers(ctx, userID, limit, page*limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:   users,
		Page:    page,
		HasMore: len(users) == limit,
	}, nil
}

// GetFollowing retrieves one page of users that the specified user follows.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, page, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	page, limit = clampPage(page, limit)

	users, err := s.followRepo.GetFollowing(ctx, userID, limit, page*limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return &model.FollowListResponse{
		Users:   users,
		Page:    page,
		HasMore: len(users) == limit,
	}, nil
}

// enrichWithFollowStatus performs a BATCH check (not N+1) to determine if the
// viewer follows each user in the list: one query with followee_id = ANY($1),
// mapped back onto the list. If the batch check fails we return the users
// with is_following=false rather than failing the whole request.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.ProfileSummary) []model.ProfileSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}

// clampPage normalizes page/limit query values shared by the listing services.
func clampPage(page, limit int) (int, int) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
