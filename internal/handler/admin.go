package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialink/internal/httputil"
	"socialink/internal/model"
	"socialink/internal/service"
	"socialink/internal/transport/http/middleware"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	stats, err := h.adminService.GetStats(r.Context(), callerID)
	if err != nil {
		h.writeAdminError(w, "Failed to get stats", callerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit, ok := parsePageLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pagination parameters")
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), callerID, page, limit)
	if err != nil {
		h.writeAdminError(w, "Failed to list users", callerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

// ListPosts handles GET /admin/posts
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page, limit, ok := parsePageLimit(r)
	if !ok {
		httputil.WriteBadRequest(w, "Invalid pagination parameters")
		return
	}

	posts, err := h.adminService.ListPosts(r.Context(), callerID, page, limit)
	if err != nil {
		h.writeAdminError(w, "Failed to list posts", callerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// DeactivateUser handles POST /admin/users/{id}/deactivate
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false, "User deactivated")
}

// ReactivateUser handles POST /admin/users/{id}/reactivate
func (h *AdminHandler) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true, "User reactivated")
}

func (h *AdminHandler) setUserActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetIDStr := chi.URLParam(r, "id")
	targetID, err := strconv.ParseInt(targetIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.adminService.SetUserActive(r.Context(), callerID, targetID, active); err != nil {
		h.writeAdminError(w, "Failed to update user", callerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": message,
	})
}

// DeactivatePost handles DELETE /admin/posts/{id}
func (h *AdminHandler) DeactivatePost(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postIDStr := chi.URLParam(r, "id")
	postID, err := strconv.ParseInt(postIDStr, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.adminService.DeactivatePost(r.Context(), callerID, postID); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		h.writeAdminError(w, "Failed to remove post", callerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post removed",
	})
}

func (h *AdminHandler) writeAdminError(w http.ResponseWriter, message string, callerID int64, err error) {
	switch {
	case errors.Is(err, model.ErrForbidden):
		httputil.WriteForbidden(w, "Admin access required")
	case errors.Is(err, model.ErrProfileNotFound):
		httputil.WriteNotFound(w, "User not found")
	default:
		log.Printf("[ERROR] Admin handler: caller=%d err=%v", callerID, err)
		httputil.WriteInternalError(w, message)
	}
}
