package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: follower follows followee.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FollowListResponse is the paginated followers/following listing.
type FollowListResponse struct {
	Users   []ProfileSummary `json:"users"`
	Page    int              `json:"page"`
	HasMore bool             `json:"has_more"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
