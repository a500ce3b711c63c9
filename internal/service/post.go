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

type PostService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	db          *sqlx.DB
	notifier    Notifier
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	followRepo repository.FollowRepository,
	db *sqlx.DB,
	notifier Notifier,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		followRepo:  followRepo,
		db:          db,
		notifier:    notifier,
		publisher:   publisher,
	}
}

// Create validates and inserts a new post. The posts_count increment commits
// in the same transaction as the insert.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	if err := model.ValidatePostContent(req.Content); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = model.DefaultPostCategory
	}

	post := &model.Post{
		AuthorID: userID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Category: category,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Create(ctx, tx, post); err != nil {
		return nil, err
	}

	if err := s.profileRepo.IncrementPostsCount(ctx, tx, userID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[PostService] Create OK: post=%d author=%d", post.ID, userID)

	// Fetch author info for the response
	author, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		post.Author = &model.ProfileSummary{
			ID:        author.ID,
			Username:  author.Username,
			FirstName: author.FirstName,
			LastName:  author.LastName,
			AvatarURL: author.AvatarURL,
		}
	}

	return post, nil
}

// GetByID retrieves a single post with its author and the viewer's like status.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		likeStatus, err := s.postRepo.CheckLikes(ctx, *viewerID, []int64{postID})
		if err != nil {
			log.Printf("[PostService] Failed to check like status: %v", err)
		} else {
			post.IsLiked = likeStatus[postID]
		}
	}

	return post, nil
}

// Update edits a post's content. Only the author may edit, and the edited
// content goes through the same validation as creation.
func (s *PostService) Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error) {
	if err := model.ValidatePostContent(req.Content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, model.ErrNotPostOwner
	}

	post.Content = req.Content
	if req.Category != nil && *req.Category != "" {
		post.Category = *req.Category
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	log.Printf("[PostService] Update OK: post=%d author=%d", postID, userID)
	return post, nil
}

// Delete soft-deletes a post. The author may delete their own post; admins go
// through AdminService. The posts_count decrement shares the transaction.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return model.ErrNotPostOwner
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

	s.publishReconcilePosts(ctx, authorID)

	log.Printf("[PostService] Delete OK: post=%d author=%d", postID, userID)
	return nil
}

// GetUserPosts retrieves one page of a profile's posts, after the visibility
// gate. The gate runs before any post query so a denied viewer learns nothing
// beyond the restricted stub.
func (s *PostService) GetUserPosts(ctx context.Context, username string, viewerID *int64, page, limit int) (*model.PostListResponse, error) {
	page, limit = clampPage(page, limit)

	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, model.ErrProfileNotFound
	}

	isFollowing := false
	if viewerID != nil && *viewerID != profile.ID {
		isFollowing, err = s.followRepo.Exists(ctx, *viewerID, profile.ID)
		if err != nil {
			return nil, err
		}
	}

	if !model.CanViewProfile(viewerID, profile, isFollowing) {
		return nil, model.ErrProfileHidden
	}

	posts, err := s.postRepo.GetByAuthor(ctx, profile.ID, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("get user posts: %w", err)
	}

	if viewerID != nil {
		s.annotateLikes(ctx, *viewerID, posts)
	}

	return &model.PostListResponse{
		Posts:   posts,
		Page:    page,
		HasMore: len(posts) == limit,
	}, nil
}

// Like adds a like to a post. One transaction: insert like + increment counter.
func (s *PostService) Like(ctx context.Context, postID, userID int64) error {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Insert like (fails if already liked)
	if err := s.postRepo.Like(ctx, tx, postID, userID); err != nil {
		return err
	}

	if err := s.postRepo.IncrementLikeCount(ctx, tx, postID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[PostService] Like OK: post=%d user=%d", postID, userID)

	// Fan-out after commit; liking your own post never notifies
	if s.notifier != nil && authorID != userID {
		pid := postID
		if err := s.notifier.CreateNotification(ctx, authorID, userID, model.NotificationTypeLike, &pid); err != nil {
			log.Printf("[PostService] Like notification FAILED: post=%d user=%d err=%v", postID, userID, err)
		}
	}

	s.publishReconcileLikes(ctx, postID)
	return nil
}

// Unlike removes a like from a post. One transaction: delete like + decrement counter.
func (s *PostService) Unlike(ctx context.Context, postID, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete like (fails if not liked)
	if err := s.postRepo.Unlike(ctx, tx, postID, userID); err != nil {
		return err
	}

	if err := s.postRepo.IncrementLikeCount(ctx, tx, postID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[PostService] Unlike OK: post=%d user=%d", postID, userID)

	s.publishReconcileLikes(ctx, postID)
	return nil
}

// annotateLikes marks which of the posts the viewer has liked via one batch
// query. A failure degrades to is_liked=false instead of failing the page.
func (s *PostService) annotateLikes(ctx context.Context, viewerID int64, posts []model.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likeMap, err := s.postRepo.CheckLikes(ctx, viewerID, postIDs)
	if err != nil {
		log.Printf("[PostService] Failed to check likes: %v", err)
		return
	}

	for i := range posts {
		posts[i].IsLiked = likeMap[posts[i].ID]
	}
}

func (s *PostService) publishReconcileLikes(ctx context.Context, postID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewReconcileLikesEvent(postID)
	if _, err := s.publisher.Publish(ctx, queue.StreamReconcile, event); err != nil {
		log.Printf("[PostService] Failed to publish reconcile event: post=%d err=%v", postID, err)
	}
}

func (s *PostService) publishReconcilePosts(ctx context.Context, userID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewReconcilePostsEvent(userID)
	if _, err := s.publisher.Publish(ctx, queue.StreamReconcile, event); err != nil {
		log.Printf("[PostService] Failed to publish reconcile event: user=%d err=%v", userID, err)
	}
}
