package fetch

import (
	"context"
	"dailydigest/internal/core"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/dustin/go-humanize"
)

const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
)

// DefaultContentSelectors indicate that a page has rendered its stories.
var DefaultContentSelectors = []string{
	"article", "main", "[role='main']", ".story", ".headline", "h2 a", "h3 a",
}

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	Selectors         []string
}

// BrowserFetcher renders pages in headless Chrome for sites that need script execution.
type BrowserFetcher struct {
	opts BrowserOptions
	log  *slog.Logger
}

// NewBrowserFetcher fills unset options with defaults.
func NewBrowserFetcher(opts BrowserOptions, log *slog.Logger) *BrowserFetcher {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = DefaultSelectorTimeout
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultContentSelectors
	}
	if log == nil {
		log = slog.Default()
	}
	return &BrowserFetcher{opts: opts, log: log}
}

// Fetch navigates to the source, waits for content on a best-effort basis and returns the page HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, source core.Source) (string, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if b.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Start the browser on the long-lived context so the timeouts below only bound their own steps.
	if err := chromedp.Run(browserCtx); err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, b.opts.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(source.URL)); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", source.URL, err)
	}

	selCtx, cancelSel := context.WithTimeout(browserCtx, b.opts.SelectorTimeout)
	defer cancelSel()
	if err := chromedp.Run(selCtx, chromedp.WaitVisible(strings.Join(b.opts.Selectors, ", "), chromedp.ByQuery)); err != nil {
		b.log.Warn("No content selector appeared, using page as loaded", "source", source.Name, "error", err.Error())
	}

	var html string
	readCtx, cancelRead := context.WithTimeout(browserCtx, b.opts.NavigationTimeout)
	defer cancelRead()
	if err := chromedp.Run(readCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML from %s: %w", source.URL, err)
	}

	b.log.Debug("Rendered page", "source", source.Name, "size", humanize.Bytes(uint64(len(html))))
	return html, nil
}
