package handler

import (
	"log"
	"net/http"

	"socialink/internal/httputil"
	"socialink/internal/service"
	"socialink/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed
// Returns one page of the authenticated user's home timeline.
//
// Query params:
//   - page: optional, zero-based page index (default 0)
//   - limit: optional, number of posts per page (default 10, max 50)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit, ok := parsePageLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pagination parameters")
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[ERROR] GetFeed handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
