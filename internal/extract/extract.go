package extract

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/llm"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedPayload means the model returned text that does not match the article schema.
var ErrMalformedPayload = errors.New("malformed extraction payload")

const (
	// SchemaName identifies the extraction schema in provider requests.
	SchemaName = "news_articles"
	// DefaultMaxArticles caps how many articles are requested per source.
	DefaultMaxArticles = 5
	// DefaultMaxPromptChars bounds the markup embedded in one prompt.
	DefaultMaxPromptChars = 200000
)

// Extractor turns one source's markup into articles.
type Extractor interface {
	Extract(ctx context.Context, html string, source core.Source) ([]core.Article, error)
}

// Options configures an LLMExtractor.
type Options struct {
	Model          string
	MaxArticles    int
	MaxPromptChars int
	// Tracker records the cost of each completion. A lookup failure fails the source.
	Tracker *cost.Tracker
}

// LLMExtractor asks a completion model for a fixed article schema.
type LLMExtractor struct {
	client llm.Client
	opts   Options
}

// NewLLMExtractor creates an extractor backed by client.
func NewLLMExtractor(client llm.Client, opts Options) *LLMExtractor {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultMaxArticles
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = DefaultMaxPromptChars
	}
	return &LLMExtractor{client: client, opts: opts}
}

type payload struct {
	Articles []draft `json:"articles"`
}

type draft struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Extract runs one completion for source. Transport and payload errors are returned as-is
// for the caller to treat as a per-source failure.
func (e *LLMExtractor) Extract(ctx context.Context, html string, source core.Source) ([]core.Article, error) {
	completion, err := e.client.Complete(ctx, llm.Request{
		Name:   SchemaName,
		Schema: Schema(),
		Prompt: BuildPrompt(html, source, e.opts.MaxArticles, e.opts.MaxPromptChars),
		Model:  e.opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction for %s failed: %w", source.Name, err)
	}

	if e.opts.Tracker != nil {
		if err := e.opts.Tracker.Track(ctx, cost.KindExtraction, source.Name, completion); err != nil {
			return nil, fmt.Errorf("extraction for %s: %w", source.Name, err)
		}
	}

	var parsed payload
	if err := json.Unmarshal([]byte(llm.StripCodeFence(completion.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrMalformedPayload, source.Name, err)
	}

	return toArticles(parsed.Articles, source, e.opts.MaxArticles), nil
}

// toArticles tags drafts with the source, resolves relative URLs and drops incomplete entries.
func toArticles(drafts []draft, source core.Source, limit int) []core.Article {
	base, _ := url.Parse(source.URL)

	articles := make([]core.Article, 0, len(drafts))
	for _, d := range drafts {
		title := strings.TrimSpace(d.Title)
		link := resolveURL(base, d.URL)
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, core.Article{
			Title:    title,
			URL:      link,
			Content:  strings.TrimSpace(d.Content),
			Source:   source.Name,
			Category: strings.TrimSpace(d.Category),
		})
		if limit > 0 && len(articles) == limit {
			break
		}
	}
	return articles
}

func resolveURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if ref.IsAbs() || base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
