package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Dir is a Store backed by a local directory.
type Dir struct {
	root string
}

// NewDir returns a store rooted at root. The directory is created by
// Materialize, not here.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the store writes into.
func (d *Dir) Root() string {
	return d.root
}

// layout returns the local file path for a store path.
func (d *Dir) layout(p string) (string, error) {
	c, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(c)), nil
}

// Materialize creates the root and every parent directory implied by paths.
// Existing directories are not an error.
func (d *Dir) Materialize(ctx context.Context, paths []string) error {
	if err := os.MkdirAll(d.root, 0755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}

	created := make(map[string]bool)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := cleanPath(p)
		if err != nil {
			return err
		}

		parent := path.Dir(c)
		if parent == "." || created[parent] {
			continue
		}
		dir := filepath.Join(d.root, filepath.FromSlash(parent))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("storage: create directory for %s: %w", p, err)
		}
		created[parent] = true
	}
	return nil
}

// Write writes data to path, truncating an existing file.
func (d *Dir) Write(ctx context.Context, p string, data []byte) error {
	target, err := d.layout(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("storage: write %s: %w", p, err)
	}
	return nil
}

// Read reads the file at path.
func (d *Dir) Read(ctx context.Context, p string) ([]byte, error) {
	target, err := d.layout(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Close is a no-op for directories.
func (d *Dir) Close() error {
	return nil
}
