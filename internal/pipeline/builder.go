package pipeline

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/cost"
	"dailydigest/internal/email"
	"dailydigest/internal/extract"
	"dailydigest/internal/fetch"
	"dailydigest/internal/llm"
	"dailydigest/internal/render"
	"dailydigest/internal/site"
	"dailydigest/internal/store"
	"dailydigest/internal/summarize"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	config     *config.Config
	client     llm.Client
	generation cost.GenerationFetcher
	fetcher    PageFetcher
	mailer     DigestMailer
	skipEmail  bool
	skipLLM    bool
	log        *slog.Logger
}

// NewBuilder creates a builder for cfg
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{config: cfg}
}

// WithLLMClient sets the completion client instead of creating one from configuration
func (b *Builder) WithLLMClient(client llm.Client) *Builder {
	b.client = client
	return b
}

// WithGenerationFetcher sets the billing lookup used for cost tracking
func (b *Builder) WithGenerationFetcher(f cost.GenerationFetcher) *Builder {
	b.generation = f
	return b
}

// WithFetcher sets the page fetcher instead of creating one from configuration
func (b *Builder) WithFetcher(f PageFetcher) *Builder {
	b.fetcher = f
	return b
}

// WithMailer sets the mailer instead of creating an SMTP one
func (b *Builder) WithMailer(m DigestMailer) *Builder {
	b.mailer = m
	return b
}

// WithoutEmail disables sending regardless of configuration
func (b *Builder) WithoutEmail() *Builder {
	b.skipEmail = true
	return b
}

// WithoutLLM builds a pipeline that can only DryRun; any completion fails
func (b *Builder) WithoutLLM() *Builder {
	b.skipLLM = true
	return b
}

// WithLogger sets the logger
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// Build constructs a fully configured Pipeline with a fresh cost ledger
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	if b.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	cfg := b.config
	log := b.log
	if log == nil {
		log = slog.Default()
	}
	loc := cfg.Location()

	client := b.client
	generation := b.generation
	if b.skipLLM {
		client, generation = unavailableClient{}, nil
	}
	if client == nil {
		var err error
		client, generation, err = NewLLMClient(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
		client = llm.NewLoggedClient(client, log)
	}

	fetcher := b.fetcher
	if fetcher == nil {
		f, err := fetch.New(cfg.Fetch, log)
		if err != nil {
			return nil, err
		}
		fetcher = f
	}

	ledger := cost.NewLedger()
	tracker := cost.NewTracker(ledger, generation, cost.DefaultRetryPolicy(), log)
	extractModel, summarizeModel := models(cfg.AI)

	extractor := extract.NewLLMExtractor(client, extract.Options{
		Model:       extractModel,
		MaxArticles: cfg.Pipeline.MaxArticlesPerSource,
		Tracker:     tracker,
	})
	summarizer := summarize.NewLLMSummarizer(client, summarize.Options{
		Model:                  summarizeModel,
		MaxArticlesPerCategory: cfg.Pipeline.MaxArticlesPerCategory,
		Tracker:                tracker,
	}, log)

	digestStore := store.NewOnDisk(store.Options{
		Path:      cfg.Store.Path,
		Retention: cfg.Store.Retention,
		Location:  loc,
	}, log)
	publisher := site.NewOnDisk(cfg.Site.OutputDir, SiteFor(cfg), log)

	var mailer DigestMailer
	if !b.skipEmail && cfg.Email.Enabled {
		mailer = b.mailer
		if mailer == nil {
			m, err := email.NewFromConfig(cfg.Email, log)
			if err != nil {
				return nil, err
			}
			mailer = m
		}
	}

	return NewPipeline(
		cfg.Sources,
		fetcher,
		extractor,
		summarizer,
		digestStore,
		publisher,
		mailer,
		ledger,
		&Config{
			BatchSize:            cfg.Pipeline.BatchSize,
			BatchPause:           config.Duration(cfg.Pipeline.BatchPause, time.Second),
			MaxArticlesPerSource: cfg.Pipeline.MaxArticlesPerSource,
			Location:             loc,
		},
		log,
	), nil
}

// NewLLMClient creates the configured completion provider. The generation
// fetcher is nil unless the provider reports per-call billing and cost
// tracking is enabled.
func NewLLMClient(ctx context.Context, cfg config.AI) (llm.Client, cost.GenerationFetcher, error) {
	switch cfg.Provider {
	case "", "openrouter":
		client, err := llm.NewOpenRouter(cfg.OpenRouter, cfg.OpenRouter.ExtractModel)
		if err != nil {
			return nil, nil, err
		}
		if !cfg.TrackCosts {
			return client, nil, nil
		}
		baseURL := cfg.OpenRouter.BaseURL
		if baseURL == "" {
			baseURL = llm.DefaultOpenRouterURL
		}
		generations := cost.NewOpenRouterGenerations(baseURL, cfg.OpenRouter.APIKey,
			config.Duration(cfg.OpenRouter.Timeout, 30*time.Second))
		return client, generations, nil
	case "gemini":
		client, err := llm.NewGemini(ctx, cfg.Gemini, cfg.Gemini.ExtractModel)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

var errLLMUnavailable = errors.New("completions are disabled for this run")

type unavailableClient struct{}

func (unavailableClient) Complete(context.Context, llm.Request) (*llm.Completion, error) {
	return nil, errLLMUnavailable
}

func models(cfg config.AI) (extractModel, summarizeModel string) {
	if cfg.Provider == "gemini" {
		return cfg.Gemini.ExtractModel, cfg.Gemini.SummarizeModel
	}
	return cfg.OpenRouter.ExtractModel, cfg.OpenRouter.SummarizeModel
}

// SiteFor describes the published archive from configuration
func SiteFor(cfg *config.Config) render.Site {
	return render.Site{
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		BaseURL:     cfg.Site.BaseURL,
		SourceURL:   cfg.Site.SourceURL,
		Location:    cfg.Location(),
	}
}
