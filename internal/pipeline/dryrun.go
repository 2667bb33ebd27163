package pipeline

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/extract"
	"time"
)

// DryRunSource reports what a source would contribute to the extraction prompt
type DryRunSource struct {
	Source          core.Source
	HTMLBytes       int
	EstimatedTokens int
	Err             error
	Duration        time.Duration
}

// DryRunResult summarizes a dry run
type DryRunResult struct {
	Sources         []DryRunSource
	TotalBytes      int
	EstimatedTokens int
}

// DryRun fetches every source and estimates prompt sizes. No completion is
// requested and nothing is written.
func (p *Pipeline) DryRun(ctx context.Context) (*DryRunResult, error) {
	sources, err := inBatches(ctx, p, p.sources, func(s core.Source) DryRunSource {
		return p.dryRunSource(ctx, s)
	})

	result := &DryRunResult{Sources: sources}
	for _, s := range sources {
		result.TotalBytes += s.HTMLBytes
		result.EstimatedTokens += s.EstimatedTokens
	}
	return result, err
}

func (p *Pipeline) dryRunSource(ctx context.Context, source core.Source) DryRunSource {
	start := time.Now()
	result := DryRunSource{Source: source}

	html, err := p.fetcher.Fetch(ctx, source)
	result.Duration = time.Since(start)
	if err != nil {
		p.log.Error("Failed to fetch source", "source", source.Name, "error", err)
		result.Err = err
		return result
	}

	prompt := extract.BuildPrompt(html, source, p.config.MaxArticlesPerSource, extract.DefaultMaxPromptChars)
	result.HTMLBytes = len(html)
	result.EstimatedTokens = cost.EstimateTokenCount(prompt)
	return result
}
