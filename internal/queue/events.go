package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the reconciliation stream
const (
	EventReconcileLikes    = "reconcile_likes"
	EventReconcileComments = "reconcile_comments"
	EventReconcileFollows  = "reconcile_follows"
	EventReconcilePosts    = "reconcile_posts"
)

// Stream names
const (
	StreamReconcile = "stream:reconcile"
)

// Consumer group name for counter workers
const (
	ConsumerGroupReconcile = "counter_workers"
)

// ReconcileEvent asks a worker to recompute one denormalized counter from its
// edge table. Events are published best-effort after the mutating transaction
// commits; the edge tables remain the source of truth.
type ReconcileEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Post counter events (likes, comments)
	PostID int64 `json:"post_id,omitempty"`

	// Profile counter events (follows, posts)
	UserID int64 `json:"user_id,omitempty"`
}

// NewReconcileLikesEvent targets a post's like_count.
func NewReconcileLikesEvent(postID int64) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventReconcileLikes,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
	}
}

// NewReconcileCommentsEvent targets a post's comment_count.
func NewReconcileCommentsEvent(postID int64) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventReconcileComments,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
	}
}

// NewReconcileFollowsEvent targets a profile's followers/following counts.
func NewReconcileFollowsEvent(userID int64) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventReconcileFollows,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// NewReconcilePostsEvent targets a profile's posts_count.
func NewReconcilePostsEvent(userID int64) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventReconcilePosts,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ReconcileEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseReconcileEvent parses a ReconcileEvent from Redis stream message values.
func ParseReconcileEvent(values map[string]interface{}) (ReconcileEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ReconcileEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ReconcileEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ReconcileEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
