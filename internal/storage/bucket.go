package storage

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Bucket is a Store backed by a gocloud bucket. Paths are used as keys
// directly, so there are no directories to create.
type Bucket struct {
	bucket *blob.Bucket
}

// NewBucket wraps an open bucket. Close closes the bucket.
func NewBucket(bucket *blob.Bucket) *Bucket {
	return &Bucket{bucket: bucket}
}

// Materialize only validates the keys; buckets have no directories.
func (b *Bucket) Materialize(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if _, err := cleanPath(p); err != nil {
			return err
		}
	}
	return nil
}

// Write uploads data under path, replacing any existing object.
func (b *Bucket) Write(ctx context.Context, p string, data []byte) error {
	key, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := b.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return fmt.Errorf("storage: write %s: %w", p, err)
	}
	return nil
}

// Read downloads the object stored under path.
func (b *Bucket) Read(ctx context.Context, p string) ([]byte, error) {
	key, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := b.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Close closes the underlying bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}
