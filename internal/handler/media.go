package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"socialink/internal/httputil"
	"socialink/internal/model"
	"socialink/internal/service"
	"socialink/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadAvatar handles POST /media/avatar
// Accepts a multipart upload, normalizes it to a 200x200 JPEG and returns the
// public URL. The caller applies it via PATCH /me.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	file, header, ok := h.parseUpload(w, r, "avatar")
	if !ok {
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

// UploadPostImage handles POST /media/posts
// Accepts a multipart upload and returns the public URL for use in a post.
func (h *MediaHandler) UploadPostImage(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	file, header, ok := h.parseUpload(w, r, "image")
	if !ok {
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadPostImage(r.Context(), file, header)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

func (h *MediaHandler) parseUpload(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return nil, nil, false
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 2MB limit")
			return nil, nil, false
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		httputil.WriteBadRequest(w, "File field '"+field+"' is required")
		return nil, nil, false
	}
	return file, header, true
}

func (h *MediaHandler) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 2MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png")
	default:
		httputil.WriteInternalError(w, "Failed to upload image")
	}
}
