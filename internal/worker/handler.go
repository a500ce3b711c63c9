package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialink/internal/queue"
)

// PostCounterReconciler recomputes a post's denormalized counters from the
// edge tables. Implemented by the post repository.
type PostCounterReconciler interface {
	ReconcileLikeCount(ctx context.Context, postID int64) error
	ReconcileCommentCount(ctx context.Context, postID int64) error
}

// ProfileCounterReconciler recomputes a profile's denormalized counters.
// Implemented by the profile repository.
type ProfileCounterReconciler interface {
	ReconcileFollowCounts(ctx context.Context, userID int64) error
	ReconcilePostsCount(ctx context.Context, userID int64) error
}

// Handler processes reconciliation events from the queue. The counters are a
// self-healing cache over the likes/comments/follows/posts tables; each event
// rewrites one counter from a COUNT(*) over its edge table.
type Handler struct {
	posts    PostCounterReconciler
	profiles ProfileCounterReconciler
}

// NewHandler creates a new event handler.
func NewHandler(posts PostCounterReconciler, profiles ProfileCounterReconciler) *Handler {
	return &Handler{
		posts:    posts,
		profiles: profiles,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ReconcileEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventReconcileLikes:
		err = h.handleReconcileLikes(ctx, event)
	case queue.EventReconcileComments:
		err = h.handleReconcileComments(ctx, event)
	case queue.EventReconcileFollows:
		err = h.handleReconcileFollows(ctx, event)
	case queue.EventReconcilePosts:
		err = h.handleReconcilePosts(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

func (h *Handler) handleReconcileLikes(ctx context.Context, event queue.ReconcileEvent) error {
	log.Printf("[Worker] ReconcileLikes: post=%d", event.PostID)

	if err := h.posts.ReconcileLikeCount(ctx, event.PostID); err != nil {
		return fmt.Errorf("reconcile like count: %w", err)
	}
	return nil
}

func (h *Handler) handleReconcileComments(ctx context.Context, event queue.ReconcileEvent) error {
	log.Printf("[Worker] ReconcileComments: post=%d", event.PostID)

	if err := h.posts.ReconcileCommentCount(ctx, event.PostID); err != nil {
		return fmt.Errorf("reconcile comment count: %w", err)
	}
	return nil
}

func (h *Handler) handleReconcileFollows(ctx context.Context, event queue.ReconcileEvent) error {
	log.Printf("[Worker] ReconcileFollows: user=%d", event.UserID)

	if err := h.profiles.ReconcileFollowCounts(ctx, event.UserID); err != nil {
		return fmt.Errorf("reconcile follow counts: %w", err)
	}
	return nil
}

func (h *Handler) handleReconcilePosts(ctx context.Context, event queue.ReconcileEvent) error {
	log.Printf("[Worker] ReconcilePosts: user=%d", event.UserID)

	if err := h.profiles.ReconcilePostsCount(ctx, event.UserID); err != nil {
		return fmt.Errorf("reconcile posts count: %w", err)
	}
	return nil
}
