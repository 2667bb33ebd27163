package handlers

import (
	"dailydigest/internal/config"
	"dailydigest/internal/pipeline"
	"dailydigest/internal/site"
	"dailydigest/internal/store"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRebuildCmd creates the rebuild command
func NewRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the web archive and RSS feed from stored digests",
		Long: `Regenerate every archive page, the index and the RSS feed from the
history file. No sources are fetched and no AI calls are made.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup(config.SiteRequirements)
			if err != nil {
				return err
			}
			defer closer.Close()

			digests := store.NewOnDisk(store.Options{
				Path:      cfg.Store.Path,
				Retention: cfg.Store.Retention,
				Location:  cfg.Location(),
			}, log).List()

			publisher := site.NewOnDisk(cfg.Site.OutputDir, pipeline.SiteFor(cfg), log)
			if err := publisher.Rebuild(digests); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
				fmt.Sprintf("Rebuilt %d digest pages in %s", len(digests), publisher.Dir())))
			return nil
		},
	}
}
