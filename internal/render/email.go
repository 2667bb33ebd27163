package render

import (
	"dailydigest/internal/core"
	"fmt"
	"html/template"
)

// EmailData contains all data needed for email rendering
type EmailData struct {
	Date       string
	IntroText  string
	Categories []core.Category
	WebURL     string // Optional public address of the archive page
}

// NewEmailData builds email data for a digest.
func NewEmailData(d core.Digest, webURL string) EmailData {
	intro := d.IntroText
	if intro == "" {
		intro = core.DefaultIntroText
	}
	return EmailData{
		Date:       d.Date,
		IntroText:  intro,
		Categories: d.Categories,
		WebURL:     webURL,
	}
}

// palette holds the colors of one color scheme.
type palette struct {
	Background string
	Text       string
	Muted      string
	Accent     string
	Link       string
	Border     string
}

var (
	lightPalette = palette{
		Background: "#ffffff",
		Text:       "#1a1a1a",
		Muted:      "#666666",
		Accent:     "#bf4600",
		Link:       "#00bfa5",
		Border:     "#e0e0e0",
	}
	darkPalette = palette{
		Background: "#1a1a1a",
		Text:       "#e0e0e0",
		Muted:      "#999999",
		Accent:     "#ff8c42",
		Link:       "#4dd0e1",
		Border:     "#333333",
	}
)

// digestCSS returns the digest styles with a dark-mode block that follows the reader's preference
func digestCSS() string {
	return fmt.Sprintf(`
<style type="text/css">
  body {
    margin: 0;
    padding: 0;
    background-color: %s;
    color: %s;
    font-family: "Playfair Display", "Times New Roman", Times, serif;
  }
  .digest { margin: 0 auto; padding: 64px 32px; max-width: 680px; }
  .digest-header { text-align: center; }
  .digest-title {
    color: %s;
    font-family: "Alegreya", "Times New Roman", Times, serif;
    font-size: 64px;
    font-weight: 400;
    line-height: 1.1;
    margin: 0;
  }
  .digest-date { color: %s; font-size: 16px; margin: 24px 0; text-transform: uppercase; }
  .web-link { text-align: center; margin-bottom: 32px; padding-bottom: 24px; border-bottom: 1px solid %s; font-size: 14px; }
  .web-link a { color: %s; text-decoration: none; }
  .intro { margin-bottom: 40px; padding-bottom: 24px; border-bottom: 1px solid %s; font-size: 18px; line-height: 1.6; }
  .category-title {
    font-family: "Alegreya", "Times New Roman", Times, serif;
    font-size: 28px;
    font-weight: 400;
    margin: 48px 0 32px;
    text-transform: uppercase;
  }
  .commentary { font-size: 18px; font-style: italic; line-height: 1.6; margin: 24px 0; }
  .article { margin-bottom: 32px; }
  .article-title { color: %s; display: block; font-size: 21px; line-height: 1.4; margin-bottom: 12px; text-decoration: none; }
  .article-source { color: %s; font-size: 16px; font-style: italic; margin: 8px 0; }
  .article-summary { font-size: 18px; line-height: 1.6; margin: 16px 0; }
  .divider { border: 0; border-top: 1px solid %s; margin: 48px 0; }

  @media (prefers-color-scheme: dark) {
    body { background-color: %s !important; color: %s !important; }
    .digest-title { color: %s !important; }
    .digest-date, .article-source { color: %s !important; }
    .web-link a, .article-title { color: %s !important; }
    .web-link, .intro { border-color: %s !important; }
    .divider { border-top-color: %s !important; }
  }
</style>`,
		lightPalette.Background, lightPalette.Text,
		lightPalette.Accent,
		lightPalette.Muted,
		lightPalette.Border, lightPalette.Link,
		lightPalette.Border,
		lightPalette.Link,
		lightPalette.Muted,
		lightPalette.Border,
		darkPalette.Background, darkPalette.Text,
		darkPalette.Accent,
		darkPalette.Muted,
		darkPalette.Link,
		darkPalette.Border,
		darkPalette.Border,
	)
}

const digestTemplate = `{{define "digest"}}<div class="digest">
  <div class="digest-header">
    <h1 class="digest-title">DAILY NEWS DIGEST</h1>
    <p class="digest-date">{{.Date}}</p>
  </div>
  {{- if .WebURL}}
  <div class="web-link">
    <a href="{{.WebURL}}">View this newsletter in your browser</a>
  </div>
  {{- end}}
  <div class="intro">
    <p>{{.IntroText}}</p>
  </div>
  {{- $n := len .Categories}}
  {{- range $i, $c := .Categories}}
  <div class="category">
    <h2 class="category-title">{{$c.Category}}</h2>
    {{- if $c.Commentary}}
    <p class="commentary">{{$c.Commentary}}</p>
    {{- end}}
    {{- range $c.Articles}}
    <div class="article">
      <a class="article-title" href="{{.URL}}">{{.Title}}</a>
      <p class="article-source">{{.Source}}</p>
      {{- if .Summary}}
      <p class="article-summary">{{.Summary}}</p>
      {{- end}}
    </div>
    {{- end}}
    {{- if notLast $i $n}}
    <hr class="divider">
    {{- end}}
  </div>
  {{- end}}
</div>{{end}}`

const emailTemplate = `{{define "email"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="color-scheme" content="light dark">
  <title>Daily News Digest - {{.Data.Date}}</title>
  {{.CSS}}
</head>
<body>
{{template "digest" .Data}}
</body>
</html>
{{end}}`

// EmailHTML renders a digest as a standalone, email-safe HTML document.
func EmailHTML(data EmailData) (string, error) {
	return execute("email", struct {
		Data EmailData
		CSS  template.HTML
	}{
		Data: data,
		CSS:  template.HTML(digestCSS()),
	})
}
