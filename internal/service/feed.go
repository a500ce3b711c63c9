package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialink/internal/model"
	"socialink/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of posts per page
	FeedDefaultLimit = 10

	// FeedMaxLimit is the maximum number of posts per page
	FeedMaxLimit = 50
)

type FeedService struct {
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
}

func NewFeedService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	profileRepo repository.ProfileRepository,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		followRepo:  followRepo,
		profileRepo: profileRepo,
	}
}

// GetFeed composes the user's home timeline with page-based pagination.
//
// Flow:
//  1. Author set = the ids the user follows, plus the user themselves
//  2. Short-circuit: nothing followed and nothing authored means an empty
//     page with no content query at all
//  3. One page query: active posts by those authors, newest first with id
//     tie-break, OFFSET page*limit
//  4. Annotate is_liked for the viewer in one batch query
//
// has_more is len(posts) == limit: when the last page is exactly full this
// reports one phantom page, which costs a single empty query on the client's
// next fetch and keeps the page query COUNT-free.
func (s *FeedService) GetFeed(ctx context.Context, userID int64, page, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get followee ids: %w", err)
	}

	if len(followeeIDs) == 0 {
		profile, err := s.profileRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile.PostsCount == 0 {
			log.Printf("[FeedService] GetFeed OK: user=%d posts=0 (empty author set) duration=%v",
				userID, time.Since(startTime))
			return &model.FeedResponse{Posts: []model.Post{}, Page: page, HasMore: false}, nil
		}
	}

	authorIDs := append(followeeIDs, userID)

	posts, err := s.postRepo.GetFeedPage(ctx, authorIDs, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("get feed page: %w", err)
	}

	s.annotateLikes(ctx, userID, posts)

	hasMore := len(posts) == limit

	log.Printf("[FeedService] GetFeed OK: user=%d page=%d posts=%d hasMore=%v duration=%v",
		userID, page, len(posts), hasMore, time.Since(startTime))

	return &model.FeedResponse{
		Posts:   posts,
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// annotateLikes marks which of the posts the viewer has liked via one batch
// query. A failure degrades to is_liked=false instead of failing the feed.
func (s *FeedService) annotateLikes(ctx context.Context, viewerID int64, posts []model.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likeStatus, err := s.postRepo.CheckLikes(ctx, viewerID, postIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check likes: %v", err)
		return
	}

	for i := range posts {
		posts[i].IsLiked = likeStatus[posts[i].ID]
	}
}
