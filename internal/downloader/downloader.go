package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ligustah/reposlurp/internal/progress"
	"github.com/ligustah/reposlurp/internal/queue"
	"github.com/ligustah/reposlurp/internal/storage"
	"github.com/ligustah/reposlurp/internal/verify"
)

// DefaultWorkers is the number of concurrent downloads used when
// Options.Workers is not set.
const DefaultWorkers = 3

var (
	// ErrList wraps a failure to list the source. Nothing has been
	// written when it is returned.
	ErrList = errors.New("list files")

	// ErrMaterialize wraps a failure to prepare the store. No download
	// has started when it is returned.
	ErrMaterialize = errors.New("create directories")
)

// Lister returns the paths of every file in a repository.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Fetcher returns the raw content of one file. Any error means the file
// is treated as absent.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Source is a repository that can be listed and fetched from.
type Source interface {
	Lister
	Fetcher
}

// Options configures the downloader.
type Options struct {
	// Workers is the number of concurrent downloads. Default: 3
	Workers int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Logger receives per-file failures at debug level and phase
	// transitions at info level. Default: slog.Default()
	Logger *slog.Logger
}

// Result describes a completed, fully verified download.
type Result struct {
	// Paths is the requested file set, in listing order.
	Paths []string

	// Hashes maps every path to the hex SHA-256 of its content.
	Hashes verify.Hashes

	// Bytes is the total size of all files.
	Bytes int64

	// Elapsed is the wall time of the whole operation.
	Elapsed time.Duration
}

// Download lists src, downloads every file into store and returns the
// content hashes of the result.
//
// Individual download failures are not reported as they happen. They are
// detected afterwards, when every requested path is read back from store;
// if any path is missing, the returned error is a *verify.MissingFilesError
// naming all of them.
func Download(ctx context.Context, src Source, store storage.Store, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	listing, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}
	paths := dedupe(listing)
	opts.Logger.Info("listed repository", "files", len(paths))

	hashes, report, err := Fetch(ctx, src, store, paths, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Paths:   paths,
		Hashes:  hashes,
		Bytes:   report.Bytes,
		Elapsed: time.Since(start),
	}, nil
}

// Fetch downloads paths from f into store and verifies them. It is the part
// of Download that runs after the listing is known.
func Fetch(ctx context.Context, f Fetcher, store storage.Store, paths []string, opts Options) (verify.Hashes, *verify.Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := store.Materialize(ctx, paths); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMaterialize, err)
	}

	if opts.Progress != nil {
		opts.Progress.SetTotal(len(paths))
	}

	t := &task{
		fetcher:  f,
		store:    store,
		reporter: opts.Progress,
		logger:   opts.Logger,
	}
	if err := queue.Run(ctx, paths, opts.Workers, t.run, queue.Options{Logger: opts.Logger}); err != nil {
		return nil, nil, fmt.Errorf("download files: %w", err)
	}
	opts.Logger.Info("downloads finished", "files", len(paths), "workers", opts.Workers)

	report, err := verify.Check(ctx, store, paths)
	if err != nil {
		return nil, nil, fmt.Errorf("verify files: %w", err)
	}
	if err := report.Err(); err != nil {
		opts.Logger.Info("verification failed", "missing", len(report.Missing))
		return nil, report, err
	}
	return report.Hashes, report, nil
}

// task downloads a single file.
type task struct {
	fetcher  Fetcher
	store    storage.Store
	reporter *progress.Reporter
	logger   *slog.Logger
}

// run fetches path and writes it to the store. Failures only leave the
// file absent; they are found later by verification.
func (t *task) run(ctx context.Context, path string) {
	if t.reporter != nil {
		t.reporter.FileStarted()
	}

	data, err := t.fetcher.Fetch(ctx, path)
	if err == nil {
		err = t.store.Write(ctx, path, data)
	}
	if err != nil {
		t.logger.Debug("file not saved", "path", path, "err", err)
		if t.reporter != nil {
			t.reporter.FileFailed()
		}
		return
	}

	if t.reporter != nil {
		t.reporter.FileCompleted(int64(len(data)))
	}
}

// dedupe drops repeated paths, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
