package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// CoverStore stores post cover images in an object-storage backend.
type CoverStore struct {
	backend ObjectStorage
}

// NewCoverStore wraps the provided backend.
func NewCoverStore(backend ObjectStorage) *CoverStore {
	return &CoverStore{backend: backend}
}

// CoverKey returns the object key holding the given post's cover image.
func CoverKey(postID int) string {
	return fmt.Sprintf("covers/%d", postID)
}

// EnsureBucket ensures the configured bucket exists.
func (s *CoverStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads a post's cover image and returns its object key.
func (s *CoverStore) Put(ctx context.Context, postID int, r io.Reader, size int64, contentType string) (string, error) {
	key := CoverKey(postID)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Get opens a reader for a stored cover image.
func (s *CoverStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored cover image.
func (s *CoverStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *CoverStore) Bucket() string {
	return s.backend.Bucket()
}
