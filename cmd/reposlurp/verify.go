package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/reposlurp/internal/config"
	"github.com/ligustah/reposlurp/internal/storage"
	"github.com/ligustah/reposlurp/pkg/manifest"
)

func (c *cli) newVerifyCmd() *cobra.Command {
	var flags config.Config

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a downloaded tree against a manifest",
		Long: `Re-hash every file recorded in a manifest and report files that are
missing or whose content changed. Exits with code 7 if the tree is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.Dest == "" || cfg.Manifest == "" {
				return withCode(ExitInvalidArgs, errors.New("--dest and --manifest are required"))
			}

			m, err := manifest.ReadFile(cfg.Manifest)
			if err != nil {
				return withCode(ExitInvalidArgs, err)
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.Dest)
			if err != nil {
				return withCode(ExitStorageError, err)
			}
			defer store.Close()

			result, err := manifest.Validate(ctx, store, m)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "Source: %s (%s)\n", m.Source, m.Ref)
			fmt.Fprintf(c.stdout, "Files: %d\n", result.FileCount)
			if result.Valid {
				fmt.Fprintln(c.stdout, "Status: VALID")
				return nil
			}

			fmt.Fprintln(c.stdout, "Status: INVALID")
			fmt.Fprintf(c.stdout, "Missing files: %d\n", len(result.Missing))
			fmt.Fprintf(c.stdout, "Modified files: %d\n", len(result.Mismatched))
			if len(result.Errors) > 0 {
				fmt.Fprintln(c.stdout, "\nErrors:")
				for _, e := range result.Errors {
					fmt.Fprintf(c.stdout, "  - %s\n", e)
				}
			}
			return withCode(ExitValidationFailed, result.Err())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Dest, "dest", "", "Directory or bucket URL holding the files (required)")
	f.StringVar(&flags.Manifest, "manifest", "", "Manifest written by fetch (required)")
	return cmd
}
