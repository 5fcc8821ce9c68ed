package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore implements Store on a local directory.
type FilesystemStore struct {
	dataDir string
}

// NewFilesystemStore creates a filesystem store rooted at dataDir,
// creating the directory if needed.
func NewFilesystemStore(dataDir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &FilesystemStore{dataDir: dataDir}, nil
}

// path resolves a key inside the data directory, rejecting traversal.
func (s *FilesystemStore) path(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.dataDir, cleaned), nil
}

// Save writes the object to disk via a temp file and rename, so a
// concurrent reader never observes a partial write.
func (s *FilesystemStore) Save(ctx context.Context, key string, contentType string, data []byte) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dataDir, "upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write media object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move media object: %w", err)
	}
	return nil
}

// Open returns a reader for the stored object.
func (s *FilesystemStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open media object: %w", err)
	}
	return f, nil
}

// Delete removes the object. Missing objects are ignored.
func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media object: %w", err)
	}
	return nil
}

// Ensure FilesystemStore implements Store.
var _ Store = (*FilesystemStore)(nil)
