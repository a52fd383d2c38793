package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestDirMaterialize(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "checkout")
	d := NewDir(root)

	paths := []string{"a.txt", "b/c.txt", "b/d/e.txt", "b/c2.txt"}
	require.NoError(t, d.Materialize(ctx, paths))

	for _, dir := range []string{"", "b", "b/d"} {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir)))
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "%q should be a directory", dir)
	}

	// Idempotent
	require.NoError(t, d.Materialize(ctx, paths))
}

func TestDirMaterializeInvalidPath(t *testing.T) {
	d := NewDir(t.TempDir())

	for _, p := range []string{"", "/etc/passwd", "../escape", "a/../../escape", "."} {
		err := d.Materialize(context.Background(), []string{p})
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", p)
	}
}

func TestDirMaterializeBlockedByFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), []byte("file"), 0644))

	err := NewDir(root).Materialize(context.Background(), []string{"b/c.txt"})
	assert.Error(t, err)
}

func TestDirWriteRead(t *testing.T) {
	ctx := context.Background()
	d := NewDir(t.TempDir())
	require.NoError(t, d.Materialize(ctx, []string{"nested/file.bin", "empty"}))

	require.NoError(t, d.Write(ctx, "nested/file.bin", []byte("first")))
	require.NoError(t, d.Write(ctx, "nested/file.bin", []byte("second")))
	require.NoError(t, d.Write(ctx, "empty", nil))

	data, err := d.Read(ctx, "nested/file.bin")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	data, err = d.Read(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDirReadMissing(t *testing.T) {
	_, err := NewDir(t.TempDir()).Read(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirWriteWithoutMaterialize(t *testing.T) {
	err := NewDir(t.TempDir()).Write(context.Background(), "no/such/dir.txt", []byte("x"))
	assert.Error(t, err)
}

func TestBucketWriteRead(t *testing.T) {
	ctx := context.Background()
	bkt, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	b := NewBucket(bkt)
	defer b.Close()

	require.NoError(t, b.Materialize(ctx, []string{"a/b/c.txt"}))
	require.NoError(t, b.Write(ctx, "a/b/c.txt", []byte("hi")))

	data, err := b.Read(ctx, "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = b.Read(ctx, "a/b/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, b.Materialize(ctx, []string{"../x"}), ErrInvalidPath)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &Dir{}, s)

	s, err = Open(ctx, "mem://")
	require.NoError(t, err)
	assert.IsType(t, &Bucket{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "")
	assert.Error(t, err)

	_, err = Open(ctx, "nosuchscheme://bucket")
	assert.Error(t, err)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.txt", "a.txt"},
		{"b/c.txt", "b/c.txt"},
		{".hidden", ".hidden"},
		{"a..b/c", "a..b/c"},
	}
	for _, tt := range tests {
		got, err := cleanPath(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCleanPathRejectsAliases(t *testing.T) {
	for _, p := range []string{
		"", "/etc/passwd", "..", "../x", ".", `a\b`,
		"./b/c.txt", "b/x/../c.txt", "b//c.txt", "b/c/", "b/./c.txt",
	} {
		_, err := cleanPath(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}
