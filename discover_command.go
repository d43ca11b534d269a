package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"epgmerge/source"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "discover <index-url>",
		Short: "List XMLTV guide links found on an HTML index page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			fetcher := source.NewFetcher(cfg)
			guides, err := fetcher.Discover(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("discover guides: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, guide := range guides {
				fmt.Fprintln(out, guide)
			}
			if len(guides) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No guide links found")
				return nil
			}

			if target := strings.TrimSpace(writePath); target != "" {
				if err := source.SaveList(target, guides); err != nil {
					return fmt.Errorf("write source list: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d sources to %s\n", len(guides), target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "Save the discovered links as a source list")
	return cmd
}
