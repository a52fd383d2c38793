package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Version is the manifest format version written by this package.
const Version = 1

// Manifest records the content hashes of a downloaded repository.
type Manifest struct {
	Version     int               `json:"version"`
	Source      string            `json:"source"`
	Ref         string            `json:"ref,omitempty"`
	FileCount   int               `json:"file_count"`
	TotalSize   int64             `json:"total_size"`
	Files       map[string]string `json:"files"` // path -> hex SHA-256
	Metadata    map[string]string `json:"metadata,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// New creates a manifest for files, which maps paths to hex SHA-256 digests.
func New(source, ref string, files map[string]string, totalSize int64) *Manifest {
	copied := make(map[string]string, len(files))
	for p, h := range files {
		copied[p] = h
	}
	return &Manifest{
		Version:     Version,
		Source:      source,
		Ref:         ref,
		FileCount:   len(copied),
		TotalSize:   totalSize,
		Files:       copied,
		CompletedAt: time.Now().UTC(),
	}
}

// Paths returns the file paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Marshal encodes the manifest as indented JSON. Map keys are sorted by
// encoding/json, so equal manifests encode identically.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a manifest.
func Unmarshal(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("manifest: unsupported version %d", m.Version)
	}
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	return &m, nil
}

// WriteFile writes the manifest to path atomically.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("manifest: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return fmt.Errorf("manifest: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("manifest: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("manifest: rename: %w", err)
	}
	return nil
}

// ReadFile reads a manifest written by WriteFile.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}
	return Unmarshal(data)
}

// Reader reads files from a tree.
type Reader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// ValidationResult contains the results of validating a tree against a manifest.
type ValidationResult struct {
	Valid      bool     // true if every file exists with the recorded digest
	FileCount  int      // number of files in the manifest
	Missing    []string // files that could not be read
	Mismatched []string // files whose content changed
	Errors     []string // detailed error messages
}

// Validate re-reads every file in m from r and compares its SHA-256 digest.
// Files are checked in sorted path order.
//
// Missing or modified files are NOT returned as errors; they are reported in
// the ValidationResult with Valid=false. An error is returned only if ctx is
// cancelled.
func Validate(ctx context.Context, r Reader, m *Manifest) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:     true,
		FileCount: len(m.Files),
		Errors:    make([]string, 0),
	}

	for _, p := range m.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := r.Read(ctx, p)
		if err != nil {
			result.Valid = false
			result.Missing = append(result.Missing, p)
			result.Errors = append(result.Errors, fmt.Sprintf("%s missing: %v", p, err))
			continue
		}

		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != m.Files[p] {
			result.Valid = false
			result.Mismatched = append(result.Mismatched, p)
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s digest mismatch: expected %s, got %s", p, m.Files[p], got))
		}
	}

	return result, nil
}

// ErrInvalid is returned by Err for a failed validation.
var ErrInvalid = errors.New("manifest: tree does not match")

// Err returns nil for a valid result and an error wrapping ErrInvalid otherwise.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %d missing, %d modified", ErrInvalid, len(r.Missing), len(r.Mismatched))
}
