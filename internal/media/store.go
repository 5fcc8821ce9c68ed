// Package media stores uploaded recipe images and user avatars.
// Images arrive as base64 data URIs, are decoded and written to a
// backend (local filesystem or S3), and are referenced by URL afterwards.
package media

import (
	"context"
	"errors"
	"io"
)

// Store errors.
var (
	// ErrInvalidImage indicates the payload is not a decodable data URI.
	ErrInvalidImage = errors.New("invalid image payload")

	// ErrImageTooLarge indicates the decoded payload exceeds the size limit.
	ErrImageTooLarge = errors.New("image too large")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("media object not found")
)

// Store persists image objects and serves them back by key.
type Store interface {
	// Save writes the object and returns its key.
	Save(ctx context.Context, key string, contentType string, data []byte) error

	// Open returns a reader for the stored object.
	// The caller must close the returned reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
