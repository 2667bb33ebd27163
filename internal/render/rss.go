package render

import (
	"dailydigest/internal/core"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
)

// RSS renders an RSS 2.0 feed with one item per digest, newest first.
// The plain description lists the categories; content:encoded carries the intro
// and category breakdown as CDATA.
func RSS(digests []core.Digest, site Site, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       site.title(),
		Link:        &feeds.Link{Href: site.URL("")},
		Description: site.Description,
		Created:     now,
		Updated:     now,
	}

	for _, d := range core.SortDigestsNewestFirst(digests) {
		link := site.DigestURL(d)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       SubjectFor(d),
			Link:        &feeds.Link{Href: link},
			Description: categoryLine(d),
			Content:     itemContent(d),
			Id:          link,
			Created:     d.Time(site.Location),
		})
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = "en-us"

	out, err := feeds.ToXML(rss)
	if err != nil {
		return "", fmt.Errorf("failed to render RSS feed: %w", err)
	}
	return out, nil
}

// categoryLine summarizes a digest as "Tech: 3 articles, World: 2 articles".
func categoryLine(d core.Digest) string {
	parts := make([]string, 0, len(d.Categories))
	for _, c := range d.Categories {
		parts = append(parts, fmt.Sprintf("%s: %d articles", c.Category, len(c.Articles)))
	}
	return "Categories: " + strings.Join(parts, ", ")
}

func itemContent(d core.Digest) string {
	var b strings.Builder
	b.WriteString("<p>" + html.EscapeString(d.IntroText) + "</p>")
	for _, c := range d.Categories {
		b.WriteString("<h3>" + html.EscapeString(c.Category) + "</h3><ul>")
		for _, a := range c.Articles {
			b.WriteString(fmt.Sprintf(`<li><a href="%s">%s</a> (%s)</li>`,
				html.EscapeString(a.URL), html.EscapeString(a.Title), html.EscapeString(a.Source)))
		}
		b.WriteString("</ul>")
	}
	return b.String()
}
