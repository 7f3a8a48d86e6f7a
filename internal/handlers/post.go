package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/internal/validate"
	"github.com/aoki-blog/apiserver/types"
)

const maxCoverBytes = 8 << 20

// PostHandler provides HTTP handlers for posts.
type PostHandler struct {
	posts *services.PostService
	log   logging.Logger
	dev   bool
}

// NewPostHandler constructs a handler over the post service.
func NewPostHandler(posts *services.PostService, log logging.Logger, dev bool) *PostHandler {
	return &PostHandler{posts: posts, log: log, dev: dev}
}

// PostResponse wraps a single post.
type PostResponse struct {
	Message string     `json:"message,omitempty"`
	Post    types.Post `json:"post"`
}

// PostListResponse wraps a post listing.
type PostListResponse struct {
	Message string       `json:"message,omitempty"`
	Posts   []types.Post `json:"posts"`
}

// ListPublished serves the public post listing: published posts only.
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Message: "all public published posts", Posts: posts})
}

// List serves the admin post listing: drafts and published posts alike.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Message: "all admin posts", Posts: posts})
}

// GetPublished serves a single post on the public tier. An unpublished post
// answers exactly like a missing one.
func (h *PostHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPublished(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: post})
}

// Get serves a single post on the admin tier, published or not.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: post})
}

// Create stores a new post authored by the requesting administrator.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	values := valuesFromContext(r.Context())

	post, err := h.posts.Create(r.Context(), principal, types.Post{
		Title:       values.String(validate.FieldTitle),
		Overview:    values.String(validate.FieldOverview),
		Text:        values.String(validate.FieldText),
		IsPublished: values.Bool(validate.FieldIsPublished),
	})
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to create post", err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{Message: "created new admin post", Post: post})
}

// Update rewrites a post's content fields.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := parseID(r, "postID")
	if !ok {
		writeNotFound(w, "post not found")
		return
	}
	values := valuesFromContext(r.Context())

	post, err := h.posts.Update(r.Context(), principal, types.Post{
		ID:          id,
		Title:       values.String(validate.FieldTitle),
		Overview:    values.String(validate.FieldOverview),
		Text:        values.String(validate.FieldText),
		IsPublished: values.Bool(validate.FieldIsPublished),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "post not found")
			return
		}
		internalError(w, r, h.log, h.dev, "failed to update post", err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{Message: "edited admin post", Post: post})
}

// Delete removes a post along with all of its comments.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), principal, post); err != nil {
		internalError(w, r, h.log, h.dev, "failed to delete post", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted admin post"})
}

// UploadCover stores the request body as the post's cover image.
func (h *PostHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "postID")
	if !ok {
		writeNotFound(w, "post not found")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "cover must be an image")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxCoverBytes)
	err := h.posts.UploadCover(r.Context(), id, body, r.ContentLength, contentType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCoversDisabled):
			writeError(w, http.StatusServiceUnavailable, "cover storage unavailable")
		case errors.Is(err, store.ErrNotFound):
			writeNotFound(w, "post not found")
		default:
			internalError(w, r, h.log, h.dev, "failed to store cover", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "uploaded cover image"})
}

// DeleteCover removes the post's cover image.
func (h *PostHandler) DeleteCover(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := h.posts.DeleteCover(r.Context(), post); err != nil {
		switch {
		case errors.Is(err, services.ErrCoversDisabled):
			writeError(w, http.StatusServiceUnavailable, "cover storage unavailable")
		case errors.Is(err, store.ErrNotFound):
			writeNotFound(w, "cover not found")
		default:
			internalError(w, r, h.log, h.dev, "failed to delete cover", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted cover image"})
}

// GetPublishedCover streams the cover image of a published post.
func (h *PostHandler) GetPublishedCover(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetchPublished(w, r)
	if !ok {
		return
	}

	cover, err := h.posts.OpenCover(r.Context(), post)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "cover not found")
			return
		}
		internalError(w, r, h.log, h.dev, "failed to read cover", err)
		return
	}
	defer cover.Close()

	if _, err := io.Copy(w, cover); err != nil {
		h.log.Warn(r.Context(), "failed to stream cover", "postId", post.ID, "err", err)
	}
}

// fetch loads the post named by the route, answering 404 on a miss.
func (h *PostHandler) fetch(w http.ResponseWriter, r *http.Request) (types.Post, bool) {
	id, ok := parseID(r, "postID")
	if !ok {
		writeNotFound(w, "post not found")
		return types.Post{}, false
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "post not found")
			return types.Post{}, false
		}
		internalError(w, r, h.log, h.dev, "failed to fetch post", err)
		return types.Post{}, false
	}
	return post, true
}

// fetchPublished is fetch with the public-tier visibility rule: an
// unpublished post is reported exactly like a missing one.
func (h *PostHandler) fetchPublished(w http.ResponseWriter, r *http.Request) (types.Post, bool) {
	post, ok := h.fetch(w, r)
	if !ok {
		return types.Post{}, false
	}
	if !post.IsPublished {
		writeNotFound(w, "post not found")
		return types.Post{}, false
	}
	return post, true
}
