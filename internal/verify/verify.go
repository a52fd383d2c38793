package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Reader reads files back from a target tree.
type Reader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Hashes maps a repository path to the hex SHA-256 digest of its content.
type Hashes map[string]string

// MissingFilesError is returned when one or more requested files could not
// be read back after downloading. Use errors.As to get the full list.
type MissingFilesError struct {
	Paths []string // in the order they were requested
}

func (e *MissingFilesError) Error() string {
	return "missing files: " + strings.Join(e.Paths, ",")
}

// Hash returns the hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Report is the outcome of checking every requested path.
// Every requested path lands in exactly one of Hashes or Missing.
type Report struct {
	Hashes  Hashes
	Missing []string
	Bytes   int64 // total size of the files that were read
}

// Check reads every path from r and hashes it. Paths that cannot be read
// for any reason are collected in Missing, in the order of paths.
// Only a cancelled context is returned as an error.
func Check(ctx context.Context, r Reader, paths []string) (*Report, error) {
	report := &Report{Hashes: make(Hashes, len(paths))}
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true

		data, err := r.Read(ctx, p)
		if err != nil {
			report.Missing = append(report.Missing, p)
			continue
		}
		report.Hashes[p] = Hash(data)
		report.Bytes += int64(len(data))
	}

	return report, nil
}

// Err returns a *MissingFilesError when any path was missing, nil otherwise.
func (r *Report) Err() error {
	if len(r.Missing) == 0 {
		return nil
	}
	return &MissingFilesError{Paths: append([]string(nil), r.Missing...)}
}

// Files hashes every path in paths as read from r. It returns the hashes
// only if every path could be read; otherwise it returns a
// *MissingFilesError naming all unreadable paths.
func Files(ctx context.Context, r Reader, paths []string) (Hashes, error) {
	report, err := Check(ctx, r, paths)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if err := report.Err(); err != nil {
		return nil, err
	}
	return report.Hashes, nil
}
