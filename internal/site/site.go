// Package site publishes the static digest archive: one page per digest, an
// index listing and an RSS feed.
package site

import (
	"dailydigest/internal/core"
	"dailydigest/internal/render"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

const (
	IndexFile = "index.html"
	FeedFile  = "rss.xml"
)

// Publisher writes rendered pages under a single output directory.
type Publisher struct {
	fs   afero.Fs
	dir  string
	site render.Site
	now  func() time.Time
	log  *slog.Logger
}

// New creates a publisher over fs. A nil logger falls back to slog.Default().
func New(fs afero.Fs, dir string, site render.Site, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{fs: fs, dir: dir, site: site, now: time.Now, log: log}
}

// NewOnDisk creates a publisher writing to the operating system filesystem.
func NewOnDisk(dir string, site render.Site, log *slog.Logger) *Publisher {
	return New(afero.NewOsFs(), dir, site, log)
}

// Dir returns the output directory.
func (p *Publisher) Dir() string {
	return p.dir
}

// DigestURL returns the absolute address of d's archive page, or "" when no
// base URL is configured.
func (p *Publisher) DigestURL(d core.Digest) string {
	if p.site.BaseURL == "" {
		return ""
	}
	return p.site.DigestURL(d)
}

// Publish writes the archive page for current and regenerates the index and feed from all.
func (p *Publisher) Publish(current core.Digest, all []core.Digest) error {
	if err := p.writeDigest(current); err != nil {
		return err
	}
	return p.writeListings(all)
}

// Rebuild regenerates every archive page plus the index and feed.
func (p *Publisher) Rebuild(all []core.Digest) error {
	for _, d := range all {
		if err := p.writeDigest(d); err != nil {
			return err
		}
	}
	return p.writeListings(all)
}

func (p *Publisher) writeDigest(d core.Digest) error {
	page, err := render.ArchivePage(d)
	if err != nil {
		return err
	}
	return p.write(render.DigestPath(d.Slug(p.site.Location)), page)
}

func (p *Publisher) writeListings(all []core.Digest) error {
	index, err := render.IndexPage(all, p.site)
	if err != nil {
		return err
	}
	if err := p.write(IndexFile, index); err != nil {
		return err
	}

	feed, err := render.RSS(all, p.site, p.now())
	if err != nil {
		return err
	}
	return p.write(FeedFile, feed)
}

func (p *Publisher) write(rel, content string) error {
	path := filepath.Join(p.dir, filepath.FromSlash(rel))
	if err := p.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := afero.WriteFile(p.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	p.log.Debug("Wrote site file", "path", path, "size", humanize.Bytes(uint64(len(content))))
	return nil
}
