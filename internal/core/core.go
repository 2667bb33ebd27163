package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultIntroText is used whenever the summarizer produces no introduction.
const DefaultIntroText = "Here's your daily news digest."

// FallbackCategoryName is the single category used when the summarizer output cannot be parsed.
const FallbackCategoryName = "Today's News"

// Source identifies a news site to poll.
type Source struct {
	Name string `json:"name" mapstructure:"name"` // Display name, e.g. "Hacker News"
	URL  string `json:"url" mapstructure:"url"`   // Base URL of the front page
}

// Article is one story extracted from a source page. Articles live for a single run.
type Article struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Content  string `json:"content"`  // Short excerpt written by the extractor
	Source   string `json:"source"`   // Display name of the originating Source
	Category string `json:"category"` // Topic suggested by the extractor
}

// CategoryArticle is an article as it appears inside a digest category.
type CategoryArticle struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Summary string `json:"summary,omitempty"`
}

// Category groups related articles under a theme.
type Category struct {
	Category   string            `json:"category"`
	Articles   []CategoryArticle `json:"articles"`
	Commentary string            `json:"commentary,omitempty"`
}

// Digest is one day's compiled news summary. Its identity is the calendar date of Timestamp.
type Digest struct {
	Date       string     `json:"date"`      // Human readable date, e.g. "January 15th, 2024"
	IntroText  string     `json:"introText"` // Opening paragraph
	Categories []Category `json:"categories"`
	Timestamp  int64      `json:"timestamp"` // Unix epoch milliseconds
}

// Time returns the digest timestamp in the given location.
func (d Digest) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(d.Timestamp).In(loc)
}

// Slug returns the date key used for the archive file name.
func (d Digest) Slug(loc *time.Location) string {
	return DateKey(d.Time(loc))
}

// ArticleCount returns the number of articles across all categories.
func (d Digest) ArticleCount() int {
	total := 0
	for _, c := range d.Categories {
		total += len(c.Articles)
	}
	return total
}

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// HumanDate formats t as "January 15th, 2024".
func HumanDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
}

// SortDigestsNewestFirst returns a copy of digests sorted by timestamp, newest first.
func SortDigestsNewestFirst(digests []Digest) []Digest {
	sorted := make([]Digest, len(digests))
	copy(sorted, digests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}
