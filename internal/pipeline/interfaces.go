package pipeline

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/summarize"
)

// PageFetcher retrieves one source's front page markup
type PageFetcher interface {
	Fetch(ctx context.Context, source core.Source) (string, error)
}

// ArticleExtractor turns page markup into articles
type ArticleExtractor interface {
	Extract(ctx context.Context, html string, source core.Source) ([]core.Article, error)
}

// DigestSummarizer groups the day's articles into categories
type DigestSummarizer interface {
	Summarize(ctx context.Context, articles []core.Article) (*summarize.Summary, error)
}

// DigestStore persists the digest history
type DigestStore interface {
	// Upsert stores the digest and returns the full retained history, newest first
	Upsert(digest core.Digest) ([]core.Digest, error)
}

// SitePublisher writes the static archive
type SitePublisher interface {
	Publish(current core.Digest, all []core.Digest) error
	// DigestURL returns the absolute archive address, or "" when unknown
	DigestURL(d core.Digest) string
}

// DigestMailer delivers the digest by email
type DigestMailer interface {
	Send(ctx context.Context, d core.Digest, webURL string) error
}
