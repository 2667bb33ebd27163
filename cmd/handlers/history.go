package handlers

import (
	"dailydigest/internal/config"
	"dailydigest/internal/core"
	"dailydigest/internal/store"
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored digests, newest first",
		Long: `List the digests kept in the history file.

Examples:
  # List every stored digest
  dailydigest history

  # List the last 7 digests
  dailydigest history --limit 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup(config.SiteRequirements)
			if err != nil {
				return err
			}
			defer closer.Close()

			s := store.NewOnDisk(store.Options{
				Path:      cfg.Store.Path,
				Retention: cfg.Store.Retention,
				Location:  cfg.Location(),
			}, log)

			digests := latestDigests(s.List(), limit)
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(digests, cfg.Location()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of digests to list (0 lists all)")
	return cmd
}

// latestDigests returns the newest limit digests regardless of stored order.
// A limit of zero or less keeps every digest.
func latestDigests(digests []core.Digest, limit int) []core.Digest {
	sorted := core.SortDigestsNewestFirst(digests)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
