package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/reposlurp/internal/config"
)

func (c *cli) newListCmd() *cobra.Command {
	var flags config.Config

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the paths of every file in a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(flags)
			if err != nil {
				return err
			}
			repo, err := newRepo(cfg)
			if err != nil {
				return err
			}

			paths, err := repo.List(cmd.Context())
			if err != nil {
				return withCode(ExitSourceNotAccess, fmt.Errorf("list files: %w", err))
			}
			for _, p := range paths {
				fmt.Fprintln(c.stdout, p)
			}
			return nil
		},
	}
	addRepoFlags(cmd, &flags)
	return cmd
}
