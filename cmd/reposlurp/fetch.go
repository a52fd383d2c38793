package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ligustah/reposlurp/internal/config"
	"github.com/ligustah/reposlurp/internal/downloader"
	"github.com/ligustah/reposlurp/internal/progress"
	"github.com/ligustah/reposlurp/internal/storage"
	"github.com/ligustah/reposlurp/internal/verify"
	"github.com/ligustah/reposlurp/pkg/manifest"
)

func (c *cli) newFetchCmd() *cobra.Command {
	var flags config.Config

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download every file of a repository and print its SHA-256",
		Long: `Download every file of a repository into a directory or bucket.

Each saved file is read back and hashed. On success one "path  sha256" line
is printed per file, sorted by path. If any file could not be saved the
command fails with exit code 7 and names every missing file.`,
		Example: `  reposlurp fetch --repo https://gitea.example.com/owner/repo --dest ./checkout
  reposlurp fetch --repo https://gitea.example.com/owner/repo --dest s3://bucket/prefix --workers 8 --manifest repo.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return withCode(ExitInvalidArgs, err)
			}
			return c.fetch(cmd.Context(), cfg)
		},
	}

	addRepoFlags(cmd, &flags)
	f := cmd.Flags()
	f.StringVar(&flags.Dest, "dest", "", "Target directory or bucket URL (file://, mem://, s3://, gs://) (required)")
	f.IntVarP(&flags.Workers, "workers", "w", 0, "Number of concurrent downloads (default 3)")
	f.StringVar(&flags.Manifest, "manifest", "", "Write a JSON manifest of the result to this file")
	f.BoolVar(&flags.Progress, "progress", false, "Show download progress")
	f.BoolVar(&flags.Bar, "progress-bar", false, "Show download progress as a bar")

	return cmd
}

func (c *cli) fetch(ctx context.Context, cfg config.Config) error {
	repo, err := newRepo(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Dest)
	if err != nil {
		return withCode(ExitStorageError, err)
	}
	defer store.Close()

	var reporter *progress.Reporter
	if cfg.Progress || cfg.Bar {
		reporter = progress.NewReporter(progress.Options{
			Workers: cfg.Workers,
			Output:  c.stderr,
			Source:  repo.URL(),
			Bar:     cfg.Bar,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	c.status("Fetching %s (%s) into %s with %d workers", repo.URL(), repo.Ref(), cfg.Dest, cfg.Workers)

	result, err := downloader.Download(ctx, repo, store, downloader.Options{
		Workers:  cfg.Workers,
		Progress: reporter,
		Logger:   c.logger,
	})
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return withCode(fetchExitCode(err), err)
	}

	m := manifest.New(repo.URL(), repo.Ref(), result.Hashes, result.Bytes)
	m.Metadata = map[string]string{
		"workers": strconv.Itoa(cfg.Workers),
		"elapsed": result.Elapsed.String(),
	}
	for _, path := range m.Paths() {
		fmt.Fprintf(c.stdout, "%s  %s\n", path, m.Files[path])
	}

	if cfg.Manifest != "" {
		if err := m.WriteFile(cfg.Manifest); err != nil {
			return withCode(ExitGeneralError, fmt.Errorf("write manifest: %w", err))
		}
		c.status("Manifest: %s", cfg.Manifest)
	}

	c.status("Fetched %d files (%s) in %s", m.FileCount, progress.FormatBytes(result.Bytes), result.Elapsed.Round(time.Millisecond))
	return nil
}

func fetchExitCode(err error) int {
	var missing *verify.MissingFilesError
	switch {
	case errors.As(err, &missing):
		return ExitValidationFailed
	case errors.Is(err, downloader.ErrList):
		return ExitSourceNotAccess
	case errors.Is(err, downloader.ErrMaterialize):
		return ExitStorageError
	default:
		return ExitGeneralError
	}
}
