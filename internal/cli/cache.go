package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, a *app) error {
				if err := a.dropCache(ctx); err != nil {
					return fmt.Errorf("clearing cache: %w", err)
				}
				_, err := fmt.Fprintln(a.out, "✓ Cache cleared.")
				return err
			})
		},
	})
	return cmd
}
