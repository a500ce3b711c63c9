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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	db          *sqlx.DB
	notifier    Notifier
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	db *sqlx.DB,
	notifier Notifier,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		db:          db,
		notifier:    notifier,
		publisher:   publisher,
	}
}

// Create adds a comment to a post. One transaction: insert comment + increment counter.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := model.ValidateCommentContent(req.Content); err != nil {
		return nil, err
	}

	// Verify post exists (and capture the author for fan-out)
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.Create(ctx, tx, postID, userID, req.Content)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Fetch author info for the response
	author, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = &model.ProfileSummary{
			ID:        author.ID,
			Username:  author.Username,
			FirstName: author.FirstName,
			LastName:  author.LastName,
			AvatarURL: author.AvatarURL,
		}
	}

	log.Printf("[CommentService] Create OK: comment=%d post=%d user=%d", comment.ID, postID, userID)

	// Fan-out after commit; commenting on your own post never notifies
	if s.notifier != nil && authorID != userID {
		pid := postID
		if err := s.notifier.CreateNotification(ctx, authorID, userID, model.NotificationTypeComment, &pid); err != nil {
			log.Printf("[CommentService] Comment notification FAILED: post=%d user=%d err=%v", postID, userID, err)
		}
	}

	s.publishReconcileComments(ctx, postID)
	return comment, nil
}

// Delete removes a comment. One transaction: soft-delete comment + decrement counter.
// Only the comment author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete comment (returns postID for counter update)
	postID, err := s.commentRepo.Delete(ctx, tx, commentID, userID)
	if err != nil {
		return err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[CommentService] Delete OK: comment=%d post=%d user=%d", commentID, postID, userID)

	s.publishReconcileComments(ctx, postID)
	return nil
}

// GetByPostID returns one page of a post's comments, oldest first (thread order).
func (s *CommentService) GetByPostID(ctx context.Context, postID int64, page, limit int) (*model.CommentListResponse, error) {
	page, limit = clampPage(page, limit)

	// Verify post exists
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	return &model.CommentListResponse{
		Comments: comments,
		Page:     page,
		HasMore:  len(comments) == limit,
	}, nil
}

func (s *CommentService) publishReconcileComments(ctx context.Context, postID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewReconcileCommentsEvent(postID)
	if _, err := s.publisher.Publish(ctx, queue.StreamReconcile, event); err != nil {
		log.Printf("[CommentService] Failed to publish reconcile event: post=%d err=%v", postID, err)
	}
}
