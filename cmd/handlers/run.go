package handlers

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/pipeline"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type runOptions struct {
	noEmail bool
	dryRun  bool
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, summarize, publish and email today's digest",
		Long: `Run the full daily digest.

Sources are fetched in small concurrent batches. Each page is reduced to a
handful of articles by the extraction model, then every article is grouped
into categories by the summarization model. The digest replaces any earlier
digest for the same day, the archive and RSS feed are regenerated, and the
email is sent.

A source that fails is logged and skipped. When no source yields an article
the run ends without storing or sending anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	addRunFlags(cmd, &opts)
	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.noEmail, "no-email", false, "Store and publish without sending email")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Fetch sources and estimate prompt sizes without AI calls or writes")
}

// requirementsFor limits config validation to what the run will touch
func requirementsFor(opts runOptions) config.Requirements {
	switch {
	case opts.dryRun:
		return config.SiteRequirements
	case opts.noEmail:
		return config.Requirements{AI: true}
	default:
		return config.RunRequirements
	}
}

func runDigest(ctx context.Context, out io.Writer, opts runOptions) error {
	cfg, log, closer, err := setup(requirementsFor(opts))
	if err != nil {
		return err
	}
	defer closer.Close()

	if opts.noEmail {
		cfg.Email.Enabled = false
	}

	builder := pipeline.NewBuilder(cfg).WithLogger(log)
	if opts.dryRun {
		builder = builder.WithoutLLM().WithoutEmail()
	}
	p, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if opts.dryRun {
		result, err := p.DryRun(ctx)
		if result != nil {
			fmt.Fprintln(out, renderDryRun(result))
		}
		return err
	}

	result, err := p.Run(ctx)
	if result != nil {
		fmt.Fprintln(out, renderRunReport(result))
	}
	return err
}
