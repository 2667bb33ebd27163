package render

import (
	"dailydigest/internal/core"
	"fmt"
	"html/template"
)

// themeVars declares the color variables for both schemes. An explicit data-theme
// attribute, set by the toggle, wins over the system preference.
func themeVars() string {
	vars := func(p palette) string {
		return fmt.Sprintf("--bg-color: %s; --text-color: %s; --text-muted: %s; --title-color: %s; --link-color: %s; --border-color: %s;",
			p.Background, p.Text, p.Muted, p.Accent, p.Link, p.Border)
	}
	return fmt.Sprintf(`
    :root { %s }
    @media (prefers-color-scheme: dark) {
      :root:not([data-theme="light"]) { %s }
    }
    [data-theme="dark"] { %s }
    [data-theme="light"] { %s }`,
		vars(lightPalette), vars(darkPalette), vars(darkPalette), vars(lightPalette))
}

const pageCSS = `
    body {
      margin: 0;
      padding: 0;
      background-color: var(--bg-color);
      color: var(--text-color);
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      line-height: 1.6;
      transition: background-color 0.3s ease, color 0.3s ease;
    }
    a { color: var(--link-color); text-decoration: none; }
    a:hover { text-decoration: underline; }
    .theme-toggle {
      background: var(--link-color);
      border: none;
      border-radius: 5px;
      color: white;
      cursor: pointer;
      font-size: 14px;
      padding: 8px 12px;
    }
    .digest { margin: 0 auto; max-width: 680px; font-family: "Playfair Display", "Times New Roman", Times, serif; }
    .digest-header { text-align: center; }
    .digest-title { color: var(--title-color); font-family: "Alegreya", "Times New Roman", Times, serif; font-size: 64px; font-weight: 400; line-height: 1.1; margin: 0; }
    .digest-date, .article-source, .digest-stats, .footer { color: var(--text-muted); }
    .digest-date { text-transform: uppercase; margin: 24px 0; }
    .web-link, .intro { border-bottom: 1px solid var(--border-color); padding-bottom: 24px; margin-bottom: 32px; }
    .intro { font-size: 18px; }
    .category-title { font-family: "Alegreya", "Times New Roman", Times, serif; font-size: 28px; font-weight: 400; margin: 48px 0 32px; text-transform: uppercase; }
    .commentary { font-size: 18px; font-style: italic; }
    .article { margin-bottom: 32px; }
    .article-title { display: block; font-size: 21px; line-height: 1.4; margin-bottom: 12px; }
    .article-source { font-style: italic; margin: 8px 0; }
    .article-summary { font-size: 18px; margin: 16px 0; }
    .divider { border: 0; border-top: 1px solid var(--border-color); margin: 48px 0; }`

const themeScript = `
  <script>
    function initTheme() {
      var saved = localStorage.getItem('theme');
      var prefersDark = window.matchMedia('(prefers-color-scheme: dark)').matches;
      document.documentElement.setAttribute('data-theme', saved || (prefersDark ? 'dark' : 'light'));
      updateToggleButton();
    }

    function toggleTheme() {
      var current = document.documentElement.getAttribute('data-theme');
      var next = current === 'dark' ? 'light' : 'dark';
      document.documentElement.setAttribute('data-theme', next);
      localStorage.setItem('theme', next);
      updateToggleButton();
    }

    function updateToggleButton() {
      var button = document.getElementById('theme-toggle');
      if (button) {
        button.textContent = document.documentElement.getAttribute('data-theme') === 'dark' ? 'Light' : 'Dark';
      }
    }

    document.addEventListener('DOMContentLoaded', initTheme);
  </script>`

const archiveTemplate = `{{define "archive"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Daily News Digest - {{.Data.Date}}</title>
  <meta name="description" content="{{.Data.IntroText}}">
  <style>{{.Style}}
    .digest-wrapper { max-width: 800px; margin: 0 auto; padding: 20px; }
    .back-link { display: flex; justify-content: space-between; align-items: center; margin-bottom: 20px; }
  </style>
  {{.Script}}
</head>
<body>
  <div class="digest-wrapper">
    <div class="back-link">
      <a href="../index.html">&larr; Back to All Digests</a>
      <button id="theme-toggle" class="theme-toggle" onclick="toggleTheme()">Dark</button>
    </div>
    {{template "digest" .Data}}
  </div>
</body>
</html>
{{end}}`

// ArchivePage renders the standalone archive page for one digest, with the same
// content as the email plus navigation and a persisted light/dark toggle.
func ArchivePage(d core.Digest) (string, error) {
	return execute("archive", struct {
		Data   EmailData
		Style  template.CSS
		Script template.HTML
	}{
		Data:   NewEmailData(d, ""),
		Style:  template.CSS(themeVars() + pageCSS),
		Script: template.HTML(themeScript),
	})
}

// IndexEntry is one digest in the archive listing.
type IndexEntry struct {
	Date          string
	IntroText     string
	Link          string
	CategoryCount int
	ArticleCount  int
}

const indexTemplate = `{{define "index"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} Archive</title>
  <meta name="description" content="{{.Description}}">
  <link rel="alternate" type="application/rss+xml" title="{{.Title}}" href="{{.FeedURL}}">
  <style>{{.Style}}
    .container { max-width: 800px; margin: 0 auto; padding: 40px 20px; }
    .header { position: relative; text-align: center; margin-bottom: 40px; padding: 40px; border-bottom: 1px solid var(--border-color); }
    .header h1 { color: var(--title-color); font-size: 2.5em; margin: 0 0 10px 0; }
    .header .theme-toggle { position: absolute; top: 20px; right: 20px; }
    .rss-link { display: inline-block; margin-top: 20px; padding: 10px 20px; background-color: #ff6600; color: white; border-radius: 5px; font-weight: bold; }
    .digest-list { display: flex; flex-direction: column; gap: 20px; }
    .digest-item { padding: 30px; border: 1px solid var(--border-color); border-radius: 8px; }
    .digest-item h3 { margin: 0 0 15px 0; font-size: 1.4em; }
    .digest-summary { margin: 0 0 10px 0; }
    .digest-stats { font-size: 0.9em; font-style: italic; margin: 0; }
    .footer { text-align: center; margin-top: 40px; font-size: 0.9em; }
  </style>
  {{.Script}}
</head>
<body>
  <div class="container">
    <div class="header">
      <button id="theme-toggle" class="theme-toggle" onclick="toggleTheme()">Dark</button>
      <h1>{{.Title}}</h1>
      <p>{{.Description}}</p>
      <a href="{{.FeedURL}}" class="rss-link">Subscribe to RSS Feed</a>
    </div>
    <div class="digest-list">
    {{- range .Entries}}
      <div class="digest-item">
        <h3><a href="{{.Link}}">{{.Date}}</a></h3>
        <p class="digest-summary">{{.IntroText}}</p>
        <p class="digest-stats">{{.CategoryCount}} categories, {{.ArticleCount}} articles</p>
      </div>
    {{- else}}
      <p>No digests yet.</p>
    {{- end}}
    </div>
    <div class="footer">
      <p>Generated by AI{{if .SourceURL}} &bull; <a href="{{.SourceURL}}">View Source</a>{{end}}</p>
    </div>
  </div>
</body>
</html>
{{end}}`

// IndexPage renders the archive listing, newest first.
func IndexPage(digests []core.Digest, site Site) (string, error) {
	sorted := core.SortDigestsNewestFirst(digests)

	entries := make([]IndexEntry, 0, len(sorted))
	for _, d := range sorted {
		entries = append(entries, IndexEntry{
			Date:          d.Date,
			IntroText:     d.IntroText,
			Link:          "./" + DigestPath(d.Slug(site.Location)),
			CategoryCount: len(d.Categories),
			ArticleCount:  d.ArticleCount(),
		})
	}

	return execute("index", struct {
		Title       string
		Description string
		SourceURL   string
		FeedURL     string
		Entries     []IndexEntry
		Style       template.CSS
		Script      template.HTML
	}{
		Title:       site.title(),
		Description: site.Description,
		SourceURL:   site.SourceURL,
		FeedURL:     site.URL("rss.xml"),
		Entries:     entries,
		Style:       template.CSS(themeVars() + pageCSS),
		Script:      template.HTML(themeScript),
	})
}
