package summarize

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/llm"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoArticles is returned when there is nothing to summarize.
var ErrNoArticles = errors.New("no articles to summarize")

// Summary is the categorized part of a digest.
type Summary struct {
	IntroText  string
	Categories []core.Category
	Fallback   bool // True when the model output could not be used
}

// Summarizer groups a run's articles into themed categories.
type Summarizer interface {
	Summarize(ctx context.Context, articles []core.Article) (*Summary, error)
}

// Options configures the summarizer behavior
type Options struct {
	Model                  string
	MaxArticlesPerCategory int
	// Tracker records the completion cost. A lookup failure is returned as an error.
	Tracker *cost.Tracker
}

// DefaultOptions returns the defaults used when no configuration is supplied
func DefaultOptions() Options {
	return Options{
		MaxArticlesPerCategory: 3,
	}
}

// LLMSummarizer produces a digest summary with one structured completion.
type LLMSummarizer struct {
	client llm.Client
	opts   Options
	log    *slog.Logger
}

// NewLLMSummarizer creates a summarizer backed by client.
func NewLLMSummarizer(client llm.Client, opts Options, log *slog.Logger) *LLMSummarizer {
	if opts.MaxArticlesPerCategory <= 0 {
		opts.MaxArticlesPerCategory = DefaultOptions().MaxArticlesPerCategory
	}
	if log == nil {
		log = slog.Default()
	}
	return &LLMSummarizer{client: client, opts: opts, log: log}
}

type digestPayload struct {
	IntroText  string          `json:"introText"`
	Categories []core.Category `json:"categories"`
}

// Summarize sends every article in one request. Transport errors are returned;
// an empty or unusable payload is replaced by Fallback.
func (s *LLMSummarizer) Summarize(ctx context.Context, articles []core.Article) (*Summary, error) {
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	completion, err := s.client.Complete(ctx, llm.Request{
		Name:   SchemaName,
		Schema: Schema(),
		Prompt: BuildDigestPrompt(articles, s.opts.MaxArticlesPerCategory),
		Model:  s.opts.Model,
	})
	if errors.Is(err, llm.ErrEmptyResponse) {
		s.log.Warn("Summarization returned an empty response, using fallback digest", "error", err.Error())
		return Fallback(articles), nil
	}
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}

	if s.opts.Tracker != nil {
		if err := s.opts.Tracker.Track(ctx, cost.KindSummarization, "", completion); err != nil {
			return nil, fmt.Errorf("summarization: %w", err)
		}
	}

	var parsed digestPayload
	if err := json.Unmarshal([]byte(llm.StripCodeFence(completion.Content)), &parsed); err != nil {
		s.log.Warn("Could not parse summarization response, using fallback digest", "error", err.Error())
		return Fallback(articles), nil
	}

	categories := cleanCategories(parsed.Categories)
	if len(categories) == 0 {
		s.log.Warn("Summarization returned no categories, using fallback digest")
		return Fallback(articles), nil
	}

	intro := strings.TrimSpace(parsed.IntroText)
	if intro == "" {
		intro = core.DefaultIntroText
	}

	return &Summary{IntroText: intro, Categories: categories}, nil
}

// Fallback puts every article, unsummarized, into a single "Today's News" category.
func Fallback(articles []core.Article) *Summary {
	items := make([]core.CategoryArticle, 0, len(articles))
	for _, a := range articles {
		items = append(items, core.CategoryArticle{
			Title:  a.Title,
			URL:    a.URL,
			Source: a.Source,
		})
	}

	return &Summary{
		IntroText: core.DefaultIntroText,
		Categories: []core.Category{{
			Category: core.FallbackCategoryName,
			Articles: items,
		}},
		Fallback: true,
	}
}

// cleanCategories trims names and drops categories without articles.
func cleanCategories(categories []core.Category) []core.Category {
	cleaned := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		c.Category = strings.TrimSpace(c.Category)
		c.Commentary = strings.TrimSpace(c.Commentary)
		if c.Category == "" || len(c.Articles) == 0 {
			continue
		}
		cleaned = append(cleaned, c)
	}
	return cleaned
}
