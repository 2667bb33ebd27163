package pipeline

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/extract"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
)

// Pipeline runs one daily digest: collect articles from every source, summarize,
// store, publish and mail.
type Pipeline struct {
	sources    []core.Source
	fetcher    PageFetcher
	extractor  ArticleExtractor
	summarizer DigestSummarizer
	store      DigestStore
	publisher  SitePublisher
	mailer     DigestMailer // nil disables email
	ledger     *cost.Ledger // nil disables the cost report

	config *Config
	now    func() time.Time
	log    *slog.Logger
}

// Config holds pipeline configuration
type Config struct {
	// BatchSize is the number of sources fetched concurrently. 1 processes sources sequentially.
	BatchSize int
	// BatchPause is the delay between consecutive batches.
	BatchPause time.Duration
	// MaxArticlesPerSource is only used to size dry-run prompt estimates.
	MaxArticlesPerSource int
	// Location decides the calendar day of a digest.
	Location *time.Location
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		BatchSize:            3,
		BatchPause:           time.Second,
		MaxArticlesPerSource: extract.DefaultMaxArticles,
		Location:             time.Local,
	}
}

// NewPipeline creates a new pipeline with all dependencies. mailer and ledger may be nil.
func NewPipeline(
	sources []core.Source,
	fetcher PageFetcher,
	extractor ArticleExtractor,
	summarizer DigestSummarizer,
	store DigestStore,
	publisher SitePublisher,
	mailer DigestMailer,
	ledger *cost.Ledger,
	config *Config,
	log *slog.Logger,
) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		sources:    sources,
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: summarizer,
		store:      store,
		publisher:  publisher,
		mailer:     mailer,
		ledger:     ledger,
		config:     config,
		now:        time.Now,
		log:        log,
	}
}

// SourceResult is the outcome of processing one source
type SourceResult struct {
	Source   core.Source
	Articles []core.Article
	Err      error
	Duration time.Duration
}

// Result contains the output of a run
type Result struct {
	RunID string
	// NoArticles is set when every source came back empty; nothing was stored or sent.
	NoArticles bool
	Digest     *core.Digest
	WebURL     string
	Emailed    bool
	// Fallback is set when the summarizer output was unusable and articles were listed flat.
	Fallback bool
	Sources  []SourceResult
	Stats    ProcessingStats
	Costs    cost.Snapshot
}

// ProcessingStats tracks run metrics
type ProcessingStats struct {
	TotalSources   int
	FailedSources  int
	Articles       int
	Categories     int
	ProcessingTime time.Duration
	StartTime      time.Time
	EndTime        time.Time
}

// Run executes the full digest run. Per-source failures are logged and skipped;
// errors from summarizing, storing, publishing or mailing end the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := p.log.With("run_id", result.RunID)
	result.Stats.StartTime = p.now()
	defer func() {
		result.Stats.EndTime = p.now()
		result.Stats.ProcessingTime = result.Stats.EndTime.Sub(result.Stats.StartTime)
		if p.ledger != nil {
			result.Costs = p.ledger.Snapshot()
		}
	}()

	log.Info("Starting digest run", "sources", len(p.sources), "batch_size", p.config.BatchSize)

	results, err := p.collect(ctx, log)
	result.Sources = results
	if err != nil {
		return result, err
	}

	articles := gather(results, &result.Stats)
	if len(articles) == 0 {
		log.Warn("No articles collected from any source; nothing to publish")
		result.NoArticles = true
		return result, nil
	}
	log.Info("Collected articles",
		"articles", len(articles),
		"sources_failed", result.Stats.FailedSources)

	summary, err := p.summarizer.Summarize(ctx, articles)
	if err != nil {
		return result, fmt.Errorf("failed to summarize articles: %w", err)
	}
	result.Fallback = summary.Fallback
	if summary.Fallback {
		log.Warn("Summarizer output unusable, using flat article list")
	}

	now := p.now().In(p.config.Location)
	digest := core.Digest{
		Date:       core.HumanDate(now),
		IntroText:  summary.IntroText,
		Categories: summary.Categories,
		Timestamp:  now.UnixMilli(),
	}
	result.Digest = &digest
	result.Stats.Categories = len(digest.Categories)

	all, err := p.store.Upsert(digest)
	if err != nil {
		return result, err
	}
	log.Info("Digest stored", "date", digest.Date, "history", len(all))

	if err := p.publisher.Publish(digest, all); err != nil {
		return result, fmt.Errorf("failed to publish site: %w", err)
	}
	result.WebURL = p.publisher.DigestURL(digest)
	log.Info("Site published", "url", result.WebURL)

	if p.mailer == nil {
		log.Info("Email disabled, skipping send")
		return result, nil
	}
	if err := p.mailer.Send(ctx, digest, result.WebURL); err != nil {
		return result, err
	}
	result.Emailed = true

	return result, nil
}

// collect processes sources in fixed-size concurrent batches. Each batch waits
// for every member; results keep registry order. Cancellation is honoured
// between batches.
func (p *Pipeline) collect(ctx context.Context, log *slog.Logger) ([]SourceResult, error) {
	return inBatches(ctx, p, p.sources, func(s core.Source) SourceResult {
		return p.processSource(ctx, log, s)
	})
}

func inBatches[R any](ctx context.Context, p *Pipeline, sources []core.Source, fn func(core.Source) R) ([]R, error) {
	results := make([]R, 0, len(sources))
	size := p.config.BatchSize

	for start := 0; start < len(sources); start += size {
		if start > 0 && p.config.BatchPause > 0 {
			if err := sleep(ctx, p.config.BatchPause); err != nil {
				return results, err
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+size, len(sources))
		mapper := iter.Mapper[core.Source, R]{MaxGoroutines: end - start}
		results = append(results, mapper.Map(sources[start:end], func(s *core.Source) R {
			return fn(*s)
		})...)
	}
	return results, nil
}

func (p *Pipeline) processSource(ctx context.Context, log *slog.Logger, source core.Source) SourceResult {
	start := time.Now()
	result := SourceResult{Source: source}
	log = log.With("source", source.Name)

	html, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		log.Error("Failed to fetch source", "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	articles, err := p.extractor.Extract(ctx, html, source)
	if err != nil {
		log.Error("Failed to extract articles", "error", err)
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.Articles = articles
	result.Duration = time.Since(start)
	log.Info("Processed source", "articles", len(articles), "duration", result.Duration.Round(time.Millisecond))
	return result
}

func gather(results []SourceResult, stats *ProcessingStats) []core.Article {
	var articles []core.Article
	stats.TotalSources = len(results)
	for _, r := range results {
		if r.Err != nil {
			stats.FailedSources++
			continue
		}
		articles = append(articles, r.Articles...)
	}
	stats.Articles = len(articles)
	return articles
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
