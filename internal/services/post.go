package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aoki-blog/apiserver/internal/events"
	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/storage"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/types"
)

// ErrCoversDisabled is returned from cover operations when no media
// backend is configured.
var ErrCoversDisabled = errors.New("cover storage is not configured")

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	ListPublished(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	SetCoverKey(ctx context.Context, id int, key string) error
	Delete(ctx context.Context, id int) error
}

// PostService encapsulates post use-cases, including the comment cascade
// on deletion and cover-image storage.
type PostService struct {
	repo     PostRepository
	comments CommentRepository
	covers   *storage.CoverStore
	events   *events.Publisher
	log      logging.Logger
}

// NewPostService constructs a PostService. covers may be nil when no media
// backend is configured.
func NewPostService(
	repo PostRepository,
	comments CommentRepository,
	covers *storage.CoverStore,
	publisher *events.Publisher,
	log logging.Logger,
) *PostService {
	return &PostService{
		repo:     repo,
		comments: comments,
		covers:   covers,
		events:   publisher,
		log:      log,
	}
}

func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) ListPublished(ctx context.Context) ([]types.Post, error) {
	return s.repo.ListPublished(ctx)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new post authored by the principal.
func (s *PostService) Create(ctx context.Context, principal types.Principal, post types.Post) (types.Post, error) {
	post.Author = principal.Snapshot()
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	s.events.Publish(ctx, events.PostsChannel, events.Event{
		Kind:       "post",
		Action:     events.ActionCreated,
		ID:         created.ID,
		PostID:     created.ID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return created, nil
}

// Update rewrites a post's content fields.
func (s *PostService) Update(ctx context.Context, principal types.Principal, post types.Post) (types.Post, error) {
	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	s.events.Publish(ctx, events.PostsChannel, events.Event{
		Kind:       "post",
		Action:     events.ActionUpdated,
		ID:         updated.ID,
		PostID:     updated.ID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return updated, nil
}

// Delete removes the post and every comment referencing it. The cascade is
// a best-effort sequence: comments go first, and a failure in either step
// is returned to the caller rather than swallowed. The cover image, if
// any, is removed best-effort afterwards.
func (s *PostService) Delete(ctx context.Context, principal types.Principal, post types.Post) error {
	if err := s.comments.DeleteByPost(ctx, post.ID); err != nil {
		return fmt.Errorf("delete comments for post %d: %w", post.ID, err)
	}
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post %d: %w", post.ID, err)
	}

	if s.covers != nil && post.CoverKey != "" {
		if err := s.covers.Delete(ctx, post.CoverKey); err != nil {
			s.log.Warn(ctx, "failed to delete cover image", "postId", post.ID, "err", err)
		}
	}

	s.events.Publish(ctx, events.PostsChannel, events.Event{
		Kind:       "post",
		Action:     events.ActionDeleted,
		ID:         post.ID,
		PostID:     post.ID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return nil
}

// UploadCover streams a cover image into object storage and records its key
// on the post.
func (s *PostService) UploadCover(ctx context.Context, postID int, r io.Reader, size int64, contentType string) error {
	if s.covers == nil {
		return ErrCoversDisabled
	}
	if _, err := s.repo.Get(ctx, postID); err != nil {
		return err
	}

	key, err := s.covers.Put(ctx, postID, r, size, contentType)
	if err != nil {
		return fmt.Errorf("store cover for post %d: %w", postID, err)
	}
	return s.repo.SetCoverKey(ctx, postID, key)
}

// OpenCover opens the post's cover image for reading. A post without a
// cover, or a disabled media backend, reads as not found.
func (s *PostService) OpenCover(ctx context.Context, post types.Post) (io.ReadCloser, error) {
	if s.covers == nil || post.CoverKey == "" {
		return nil, store.ErrNotFound
	}
	return s.covers.Get(ctx, post.CoverKey)
}

// DeleteCover removes the post's cover image and clears its key.
func (s *PostService) DeleteCover(ctx context.Context, post types.Post) error {
	if s.covers == nil {
		return ErrCoversDisabled
	}
	if post.CoverKey == "" {
		return store.ErrNotFound
	}
	if err := s.covers.Delete(ctx, post.CoverKey); err != nil {
		return fmt.Errorf("delete cover for post %d: %w", post.ID, err)
	}
	return s.repo.SetCoverKey(ctx, post.ID, "")
}
