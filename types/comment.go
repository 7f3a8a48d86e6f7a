package types

import "time"

// Comment represents a reader comment attached to a post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// Text is the body of the comment.
	Text string `json:"text" db:"text"`

	// Author is the snapshot of the user who wrote the comment. It is set
	// once at creation and drives all ownership checks afterwards.
	Author AuthorSnapshot `json:"author"`

	// PostID references the post the comment belongs to.
	PostID int `json:"postId" db:"post_id"`

	// CreatedAt is the timestamp at which the comment was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the comment.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
