package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	headingTags   = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	containerTags = []string{"p", "div", "section", "article", "main", "header", "nav", "ul", "ol", "li", "span"}
)

// newPolicy keeps headings, paragraphs, anchors and structural containers.
// Anchors keep href and title; every other kept element keeps class and id.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(headingTags...)
	p.AllowElements(containerTags...)
	p.AllowElements("a")

	structural := append(append([]string{}, headingTags...), containerTags...)
	p.AllowNoAttrs().OnElements(structural...)
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("class", "id").OnElements(structural...)

	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)
	return p
}

// Sanitize reduces page markup to an allow-list of tags, drops elements with no
// visible text and rewrites relative anchor hrefs against baseURL.
func Sanitize(html, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %s: %w", baseURL, err)
	}

	filtered := newPolicy().Sanitize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(filtered))
	if err != nil {
		return "", fmt.Errorf("failed to parse sanitized markup: %w", err)
	}

	body := doc.Find("body")

	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})

	body.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			s.RemoveAttr("href")
			return
		}
		if !ref.IsAbs() {
			s.SetAttr("href", base.ResolveReference(ref).String())
		}
	})

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render sanitized markup: %w", err)
	}
	return strings.TrimSpace(out), nil
}
