package handler

import (
	"net/http"
	"strconv"
)

// parsePageLimit reads the shared page/limit query params. Zero values mean
// "use the service default"; malformed values report false.
func parsePageLimit(r *http.Request) (page, limit int, ok bool) {
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 {
			return 0, 0, false
		}
		page = parsed
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return 0, 0, false
		}
		limit = parsed
	}

	return page, limit, true
}
