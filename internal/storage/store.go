package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"gocloud.dev/blob"
)

var (
	// ErrNotFound is returned by Read when nothing is stored at the path.
	ErrNotFound = errors.New("storage: file not found")

	// ErrInvalidPath is returned for paths that are empty, absolute or
	// escape the store's root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// Store is the target tree that downloaded files are written into.
// Paths are slash-separated and relative to the store's root.
type Store interface {
	// Materialize prepares the store so that every path can be written.
	// For a directory this creates all parent directories.
	Materialize(ctx context.Context, paths []string) error

	// Write stores data at path, replacing any previous content.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the content stored at path.
	// A missing path yields an error wrapping ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Close releases resources held by the store.
	Close() error
}

// Open returns the store for location. A location containing "://" is
// opened as a gocloud bucket URL (file://, mem://, s3://, gs://); anything
// else is a local directory.
func Open(ctx context.Context, location string) (Store, error) {
	if location == "" {
		return nil, errors.New("storage: empty location")
	}
	if !strings.Contains(location, "://") {
		return NewDir(location), nil
	}

	bkt, err := blob.OpenBucket(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("storage: open bucket: %w", err)
	}
	return NewBucket(bkt), nil
}

// cleanPath validates a relative path. Only canonical paths are accepted,
// so two different strings never name the same file.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	c := path.Clean(p)
	if c != p || c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return c, nil
}
