package fetch

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/core"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

// maxPageBytes caps how much of a front page is read.
const maxPageBytes = 10 << 20

// Fetcher retrieves the markup of a source's front page.
type Fetcher interface {
	Fetch(ctx context.Context, source core.Source) (string, error)
}

// New builds the fetcher selected by cfg.Mode, wrapped with sanitization when enabled.
func New(cfg config.Fetch, log *slog.Logger) (Fetcher, error) {
	if log == nil {
		log = slog.Default()
	}

	var f Fetcher
	switch cfg.Mode {
	case "", "http":
		f = NewHTTPFetcher(cfg.UserAgent, config.Duration(cfg.Timeout, 30*time.Second), log)
	case "browser":
		f = NewBrowserFetcher(BrowserOptions{
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: config.Duration(cfg.NavigationTimeout, DefaultNavigationTimeout),
			SelectorTimeout:   config.Duration(cfg.SelectorTimeout, DefaultSelectorTimeout),
			Selectors:         cfg.ContentSelectors,
		}, log)
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", cfg.Mode)
	}

	if cfg.Sanitize {
		f = Sanitizing(f)
	}
	return f, nil
}

// HTTPFetcher fetches pages with a plain GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

// NewHTTPFetcher creates an HTTP fetcher with the given user agent and timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration, log *slog.Logger) *HTTPFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch returns the response body. Any non-2xx status is an error.
func (h *HTTPFetcher) Fetch(ctx context.Context, source core.Source) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", source.URL, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", source.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", source.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", source.URL, err)
	}

	h.log.Debug("Fetched page", "source", source.Name, "size", humanize.Bytes(uint64(len(body))))
	return string(body), nil
}

// sanitizingFetcher passes fetched markup through Sanitize.
type sanitizingFetcher struct {
	next Fetcher
}

// Sanitizing wraps f so every fetched page is sanitized against the source URL.
func Sanitizing(f Fetcher) Fetcher {
	return &sanitizingFetcher{next: f}
}

func (s *sanitizingFetcher) Fetch(ctx context.Context, source core.Source) (string, error) {
	raw, err := s.next.Fetch(ctx, source)
	if err != nil {
		return "", err
	}
	clean, err := Sanitize(raw, source.URL)
	if err != nil {
		return "", fmt.Errorf("failed to sanitize %s: %w", source.Name, err)
	}
	return clean, nil
}
