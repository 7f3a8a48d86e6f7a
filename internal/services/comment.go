package services

import (
	"context"
	"time"

	"github.com/aoki-blog/apiserver/internal/events"
	"github.com/aoki-blog/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
	Get(ctx context.Context, id int) (types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Update(ctx context.Context, comment types.Comment) (types.Comment, error)
	Delete(ctx context.Context, id int) error
	DeleteByPost(ctx context.Context, postID int) error
}

// CanEditComment reports whether the principal may edit the comment. Only
// the comment's author may: administrator status grants no edit rights on
// other people's comments.
func CanEditComment(principal types.Principal, comment types.Comment) bool {
	return principal.ID == comment.Author.ID
}

// CanDeleteComment reports whether the principal may delete the comment.
// The author always may; administrators moderate by deletion, so they may
// delete any comment.
func CanDeleteComment(principal types.Principal, comment types.Comment) bool {
	return principal.ID == comment.Author.ID || principal.IsAdmin
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	repo   CommentRepository
	events *events.Publisher
}

func NewCommentService(repo CommentRepository, publisher *events.Publisher) *CommentService {
	return &CommentService{repo: repo, events: publisher}
}

func (s *CommentService) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) Get(ctx context.Context, id int) (types.Comment, error) {
	return s.repo.Get(ctx, id)
}

// Create attaches a new comment by the principal to the post. The author
// snapshot is captured here and never reassigned afterwards.
func (s *CommentService) Create(ctx context.Context, principal types.Principal, postID int, text string) (types.Comment, error) {
	comment, err := s.repo.Create(ctx, types.Comment{
		Text:   text,
		Author: principal.Snapshot(),
		PostID: postID,
	})
	if err != nil {
		return types.Comment{}, err
	}

	s.events.Publish(ctx, events.CommentsChannel, events.Event{
		Kind:       "comment",
		Action:     events.ActionCreated,
		ID:         comment.ID,
		PostID:     comment.PostID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return comment, nil
}

// Update rewrites the comment's text. Callers must have passed
// CanEditComment first.
func (s *CommentService) Update(ctx context.Context, principal types.Principal, comment types.Comment, text string) (types.Comment, error) {
	comment.Text = text
	updated, err := s.repo.Update(ctx, comment)
	if err != nil {
		return types.Comment{}, err
	}

	s.events.Publish(ctx, events.CommentsChannel, events.Event{
		Kind:       "comment",
		Action:     events.ActionUpdated,
		ID:         updated.ID,
		PostID:     updated.PostID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return updated, nil
}

// Delete removes the comment. Callers must have passed CanDeleteComment
// first.
func (s *CommentService) Delete(ctx context.Context, principal types.Principal, comment types.Comment) error {
	if err := s.repo.Delete(ctx, comment.ID); err != nil {
		return err
	}

	s.events.Publish(ctx, events.CommentsChannel, events.Event{
		Kind:       "comment",
		Action:     events.ActionDeleted,
		ID:         comment.ID,
		PostID:     comment.PostID,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	})
	return nil
}
