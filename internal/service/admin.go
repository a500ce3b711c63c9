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

// AdminService handles moderation operations. Every method verifies the
// caller's role before touching anything.
type AdminService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	authService *AuthService
	db          *sqlx.DB
	publisher   queue.Publisher
}

func NewAdminService(
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	authService *AuthService,
	db *sqlx.DB,
	publisher queue.Publisher,
) *AdminService {
	return &AdminService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		authService: authService,
		db:          db,
		publisher:   publisher,
	}
}

func (s *AdminService) requireAdmin(ctx context.Context, callerID int64) error {
	caller, err := s.profileRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role != model.RoleAdmin || !caller.IsActive {
		return model.ErrForbidden
	}
	return nil
}

// GetStats returns platform totals for the moderation dashboard.
func (s *AdminService) GetStats(ctx context.Context, callerID int64) (*model.AdminStats, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	totalUsers, activeUsers, err := s.profileRepo.CountProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}

	totalPosts, activePosts, err := s.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	return &model.AdminStats{
		TotalUsers:  totalUsers,
		ActiveUsers: activeUsers,
		TotalPosts:  totalPosts,
		ActivePosts: activePosts,
	}, nil
}

// ListUsers returns one page of all profiles, active or not.
func (s *AdminService) ListUsers(ctx context.Context, callerID int64, page, limit int) (*model.AdminUserListResponse, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	page, limit = clampPage(page, limit)

	users, err := s.profileRepo.List(ctx, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i].Email = ""
	}

	return &model.AdminUserListResponse{
		Users:   users,
		Page:    page,
		HasMore: len(users) == limit,
	}, nil
}

// ListPosts returns one page of all posts, active or not.
func (s *AdminService) ListPosts(ctx context.Context, callerID int64, page, limit int) (*model.AdminPostListResponse, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	page, limit = clampPage(page, limit)

	posts, err := s.postRepo.List(ctx, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &model.AdminPostListResponse{
		Posts:   posts,
		Page:    page,
		HasMore: len(posts) == limit,
	}, nil
}

// SetUserActive flips a profile's active flag. Deactivation also revokes every
// refresh token so the account cannot mint new access tokens. Admins cannot
// deactivate themselves.
func (s *AdminService) SetUserActive(ctx context.Context, callerID, targetID int64, active bool) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if callerID == targetID && !active {
		return model.ErrForbidden
	}

	if err := s.profileRepo.SetActive(ctx, targetID, active); err != nil {
		return err
	}

	if !active && s.authService != nil {
		if err := s.authService.RevokeAllUserTokens(ctx, targetID); err != nil {
			log.Printf("[AdminService] Revoke tokens FAILED: user=%d err=%v", targetID, err)
		}
	}

	log.Printf("[AdminService] SetUserActive OK: admin=%d user=%d active=%v", callerID, targetID, active)
	return nil
}

// DeactivatePost soft-deletes any post regardless of author. Same transaction
// shape as an author delete: deactivate + posts_count decrement.
func (s *AdminService) DeactivatePost(ctx context.Context, callerID, postID int64) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}

	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Deactivate(ctx, tx, postID); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementPostsCount(ctx, tx, authorID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewReconcilePostsEvent(authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamReconcile, event); err != nil {
			log.Printf("[AdminService] Failed to publish reconcile event: user=%d err=%v", authorID, err)
		}
	}

	log.Printf("[AdminService] DeactivatePost OK: admin=%d post=%d author=%d", callerID, postID, authorID)
	return nil
}
