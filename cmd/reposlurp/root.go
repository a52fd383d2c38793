package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ligustah/reposlurp/internal/config"
	slurphttp "github.com/ligustah/reposlurp/internal/http"
	"github.com/ligustah/reposlurp/internal/remote"
)

// cli holds state shared by all subcommands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "reposlurp",
		Short: "Download every file of a forge repository and verify it",
		Long: `reposlurp lists a repository on a Gitea-style forge, downloads every file
with a fixed number of concurrent workers and reads each one back to compute
its SHA-256. Files that could not be saved are reported together at the end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return withCode(ExitInvalidArgs, errors.New("no command given"))
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withCode(ExitInvalidArgs, err)
	})

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log every file failure")

	root.AddCommand(c.newFetchCmd(), c.newListCmd(), c.newVerifyCmd())
	return root
}

// loadConfig returns the effective configuration: defaults, config file,
// environment, then the command's flags.
func (c *cli) loadConfig(flags config.Config) (config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return config.Config{}, withCode(ExitInvalidArgs, err)
	}
	return cfg.Merge(flags), nil
}

func (c *cli) status(format string, args ...any) {
	fmt.Fprintf(c.stderr, "[reposlurp] "+format+"\n", args...)
}

func newRepo(cfg config.Config) (*remote.Repo, error) {
	httpOpts := slurphttp.DefaultOptions()
	if cfg.HTTP.Timeout > 0 {
		httpOpts.Timeout = cfg.HTTP.Timeout
	}
	if cfg.HTTP.MaxIdleConnsPerHost > 0 {
		httpOpts.MaxIdleConnsPerHost = cfg.HTTP.MaxIdleConnsPerHost
	}

	repo, err := remote.New(cfg.Repo, remote.Options{
		Ref:         cfg.Ref,
		ListPath:    cfg.ListPath,
		RawPath:     cfg.RawPath,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, withCode(ExitInvalidArgs, err)
	}
	return repo, nil
}

// addRepoFlags registers the flags that locate the remote repository.
func addRepoFlags(cmd *cobra.Command, flags *config.Config) {
	f := cmd.Flags()
	f.StringVar(&flags.Repo, "repo", "", "Repository URL, e.g. https://gitea.example.com/owner/name (required)")
	f.StringVar(&flags.Ref, "ref", "", "Branch to download (default master)")
	f.StringVar(&flags.ListPath, "list-path", "", "Listing endpoint relative to the repository URL")
	f.StringVar(&flags.RawPath, "raw-path", "", "Raw content endpoint relative to the repository URL")
	f.DurationVar(&flags.HTTP.Timeout, "timeout", 0, "Per-request timeout (default 30s)")
}
