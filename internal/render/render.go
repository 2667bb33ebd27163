package render

import (
	"bytes"
	"dailydigest/internal/core"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// DefaultTitle is the site and feed title used when none is configured.
const DefaultTitle = "Daily News Digest"

// Site describes the published archive.
type Site struct {
	Title       string
	Description string
	BaseURL     string // Absolute URL without trailing slash; empty renders relative links
	SourceURL   string
	Location    *time.Location // Calendar zone for digest slugs; nil means time.Local
}

func (s Site) title() string {
	if s.Title == "" {
		return DefaultTitle
	}
	return s.Title
}

// DigestPath returns the archive page path relative to the site root.
func DigestPath(slug string) string {
	return "digests/" + slug + ".html"
}

// URL joins a site-relative path onto the base URL.
func (s Site) URL(path string) string {
	if s.BaseURL == "" {
		return path
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// DigestURL returns the public address of a digest's archive page.
func (s Site) DigestURL(d core.Digest) string {
	return s.URL(DigestPath(d.Slug(s.Location)))
}

// SubjectFor returns the title used for the email subject, page title and feed item.
func SubjectFor(d core.Digest) string {
	return fmt.Sprintf("Daily News Digest - %s", d.Date)
}

// Templates are parsed once; a parse error is a programming error.
var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"notLast": func(i, n int) bool { return i < n-1 },
}).Parse(digestTemplate + emailTemplate + archiveTemplate + indexTemplate))

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
