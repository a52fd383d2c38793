package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapReader map[string][]byte

func (m mapReader) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("%s: not found", path)
	}
	return data, nil
}

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestNewCopiesFiles(t *testing.T) {
	files := map[string]string{"a": sha("a")}
	m := New("https://example.com/repo", "main", files, 1)
	files["b"] = sha("b")

	assert.Equal(t, 1, m.FileCount)
	assert.Len(t, m.Files, 1)
	assert.Equal(t, Version, m.Version)
	assert.False(t, m.CompletedAt.IsZero())
}

func TestWriteReadFile(t *testing.T) {
	m := New("https://example.com/repo", "master", map[string]string{
		"b/c.txt": sha("c"),
		"a.txt":   sha("a"),
	}, 2)
	m.Metadata = map[string]string{"workers": "3"}

	path := filepath.Join(t.TempDir(), "out", "manifest.json")
	require.NoError(t, m.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Source, got.Source)
	assert.Equal(t, m.Ref, got.Ref)
	assert.Equal(t, m.Files, got.Files)
	assert.Equal(t, m.Metadata, got.Metadata)
	assert.True(t, m.CompletedAt.Equal(got.CompletedAt))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMarshalStable(t *testing.T) {
	m := New("src", "", map[string]string{"z": "1", "a": "2", "m": "3"}, 0)
	first, err := m.Marshal()
	require.NoError(t, err)
	second, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"version": 99}`))
	assert.Error(t, err)

	m, err := Unmarshal([]byte(`{"version": 1}`))
	require.NoError(t, err)
	assert.NotNil(t, m.Files)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPathsSorted(t *testing.T) {
	m := New("src", "", map[string]string{"b": "", "a/z": "", "a": ""}, 0)
	assert.Equal(t, []string{"a", "a/z", "b"}, m.Paths())
}

func TestValidateValid(t *testing.T) {
	tree := mapReader{"a.txt": []byte("a"), "b/c.txt": []byte("c")}
	m := New("src", "", map[string]string{"a.txt": sha("a"), "b/c.txt": sha("c")}, 2)

	result, err := Validate(context.Background(), tree, m)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.FileCount)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestValidateMissingAndModified(t *testing.T) {
	tree := mapReader{"a.txt": []byte("changed"), "d.txt": []byte("d")}
	m := New("src", "", map[string]string{
		"a.txt":   sha("a"),
		"b/c.txt": sha("c"),
		"d.txt":   sha("d"),
	}, 3)

	result, err := Validate(context.Background(), tree, m)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"b/c.txt"}, result.Missing)
	assert.Equal(t, []string{"a.txt"}, result.Mismatched)
	assert.Len(t, result.Errors, 2)
	assert.ErrorIs(t, result.Err(), ErrInvalid)
}

func TestValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New("src", "", map[string]string{"a": sha("a")}, 1)
	_, err := Validate(ctx, mapReader{}, m)
	assert.ErrorIs(t, err, context.Canceled)
}
