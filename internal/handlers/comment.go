package handlers

import (
	"errors"
	"net/http"

	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/internal/validate"
	"github.com/aoki-blog/apiserver/types"
)

// CommentHandler provides HTTP handlers for comments. Each handler comes in
// a public and an admin flavor: on the public tier the parent post must be
// published, or the whole subtree reads as missing.
type CommentHandler struct {
	comments *services.CommentService
	posts    *services.PostService
	log      logging.Logger
	dev      bool
}

// NewCommentHandler constructs a handler over the comment and post services.
func NewCommentHandler(comments *services.CommentService, posts *services.PostService, log logging.Logger, dev bool) *CommentHandler {
	return &CommentHandler{comments: comments, posts: posts, log: log, dev: dev}
}

// CommentResponse wraps a single comment.
type CommentResponse struct {
	Message string        `json:"message,omitempty"`
	Comment types.Comment `json:"comment"`
}

// CommentListResponse wraps a post's comment listing.
type CommentListResponse struct {
	Message  string          `json:"message,omitempty"`
	Comments []types.Comment `json:"comments"`
}

// List returns a handler serving a post's comments.
func (h *CommentHandler) List(publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := h.fetchPost(w, r, publishedOnly)
		if !ok {
			return
		}

		comments, err := h.comments.ListByPost(r.Context(), post.ID)
		if err != nil {
			internalError(w, r, h.log, h.dev, "failed to list comments", err)
			return
		}
		writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
	}
}

// Create returns a handler attaching a new comment by the authenticated
// principal to the post.
func (h *CommentHandler) Create(publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		post, ok := h.fetchPost(w, r, publishedOnly)
		if !ok {
			return
		}

		text := valuesFromContext(r.Context()).String(validate.FieldText)
		comment, err := h.comments.Create(r.Context(), principal, post.ID, text)
		if err != nil {
			internalError(w, r, h.log, h.dev, "failed to create comment", err)
			return
		}

		writeJSON(w, http.StatusCreated, CommentResponse{Message: "created new comment", Comment: comment})
	}
}

// Update returns a handler rewriting a comment's text. Only the comment's
// author may edit it; administrator status grants nothing here.
func (h *CommentHandler) Update(publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		comment, ok := h.fetchComment(w, r, publishedOnly)
		if !ok {
			return
		}

		if !services.CanEditComment(principal, comment) {
			writeUnauthorized(w)
			return
		}

		text := valuesFromContext(r.Context()).String(validate.FieldText)
		updated, err := h.comments.Update(r.Context(), principal, comment, text)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeNotFound(w, "comment not found")
				return
			}
			internalError(w, r, h.log, h.dev, "failed to update comment", err)
			return
		}

		writeJSON(w, http.StatusCreated, CommentResponse{Message: "edited comment", Comment: updated})
	}
}

// Delete returns a handler removing a comment. The author may always delete
// their own comment; administrators may delete anyone's.
func (h *CommentHandler) Delete(publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		comment, ok := h.fetchComment(w, r, publishedOnly)
		if !ok {
			return
		}

		if !services.CanDeleteComment(principal, comment) {
			writeUnauthorized(w)
			return
		}

		if err := h.comments.Delete(r.Context(), principal, comment); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeNotFound(w, "comment not found")
				return
			}
			internalError(w, r, h.log, h.dev, "failed to delete comment", err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted comment"})
	}
}

// fetchPost loads the parent post named by the route, applying the public
// tier's visibility rule when publishedOnly is set. Lookup misses are
// reported before any ownership decision is made.
func (h *CommentHandler) fetchPost(w http.ResponseWriter, r *http.Request, publishedOnly bool) (types.Post, bool) {
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
	if publishedOnly && !post.IsPublished {
		writeNotFound(w, "post not found")
		return types.Post{}, false
	}
	return post, true
}

// fetchComment loads both the parent post and the comment, verifying the
// comment actually belongs to the post named in the route.
func (h *CommentHandler) fetchComment(w http.ResponseWriter, r *http.Request, publishedOnly bool) (types.Comment, bool) {
	post, ok := h.fetchPost(w, r, publishedOnly)
	if !ok {
		return types.Comment{}, false
	}

	id, ok := parseID(r, "commentID")
	if !ok {
		writeNotFound(w, "comment not found")
		return types.Comment{}, false
	}

	comment, err := h.comments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNotFound(w, "comment not found")
			return types.Comment{}, false
		}
		internalError(w, r, h.log, h.dev, "failed to fetch comment", err)
		return types.Comment{}, false
	}
	if comment.PostID != post.ID {
		writeNotFound(w, "comment not found")
		return types.Comment{}, false
	}
	return comment, true
}
