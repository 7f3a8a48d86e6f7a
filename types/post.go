package types

import "time"

// Post represents a blog post.
// Posts are authored and edited exclusively by administrators; readers only
// ever see published posts.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Overview is the short summary shown in post listings.
	Overview string `json:"overview" db:"overview"`

	// Text is the full body of the post.
	Text string `json:"text" db:"text"`

	// IsPublished controls visibility on the public tier. An unpublished
	// post is indistinguishable from a missing one for public callers.
	IsPublished bool `json:"isPublished" db:"is_published"`

	// Author is the snapshot of the administrator who created the post.
	Author AuthorSnapshot `json:"author"`

	// CoverKey is the object-storage key of the post's cover image, or
	// empty when no cover has been uploaded.
	CoverKey string `json:"-" db:"cover_key"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
