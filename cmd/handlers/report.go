package handlers

import (
	"dailydigest/internal/core"
	"dailydigest/internal/pipeline"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	colorYellow  = lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#F2C94C"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	labelStyle   = lipgloss.NewStyle().Foreground(colorDim).Width(16)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

const maxErrorWidth = 60

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func status(err error) string {
	if err == nil {
		return successStyle.Render("ok")
	}
	msg := err.Error()
	if len(msg) > maxErrorWidth {
		msg = msg[:maxErrorWidth-3] + "..."
	}
	return errorStyle.Render(msg)
}

func renderRunReport(r *pipeline.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Daily Digest Run"))
	b.WriteString("\n")
	b.WriteString(field("Run", r.RunID) + "\n")

	if len(r.Sources) > 0 {
		t := newTable("SOURCE", "ARTICLES", "TIME", "STATUS")
		for _, s := range r.Sources {
			t.Row(s.Source.Name, fmt.Sprint(len(s.Articles)), s.Duration.Round(time.Millisecond).String(), status(s.Err))
		}
		b.WriteString(t.Render() + "\n")
	}

	if r.NoArticles {
		b.WriteString(warnStyle.Render("No articles collected; nothing was stored or sent") + "\n")
	}

	b.WriteString(field("Articles", fmt.Sprint(r.Stats.Articles)) + "\n")
	b.WriteString(field("Failed sources", fmt.Sprintf("%d of %d", r.Stats.FailedSources, r.Stats.TotalSources)) + "\n")

	if r.Digest != nil {
		b.WriteString(field("Digest", r.Digest.Date) + "\n")
		b.WriteString(field("Categories", fmt.Sprint(r.Stats.Categories)) + "\n")
		if r.Fallback {
			b.WriteString(field("Summary", warnStyle.Render("fallback list (summarizer output unusable)")) + "\n")
		}
		if r.WebURL != "" {
			b.WriteString(field("Web", r.WebURL) + "\n")
		}
		email := "not sent"
		if r.Emailed {
			email = successStyle.Render("sent")
		}
		b.WriteString(field("Email", email) + "\n")
	}

	if len(r.Costs.Models) > 0 {
		t := newTable("MODEL", "CALLS", "PROMPT", "COMPLETION", "COST")
		for _, m := range r.Costs.Models {
			t.Row(m.Model, fmt.Sprint(m.Calls), humanize.Comma(int64(m.PromptTokens)),
				humanize.Comma(int64(m.CompletionTokens)), fmt.Sprintf("$%.4f", m.Cost))
		}
		b.WriteString(t.Render() + "\n")
		b.WriteString(field("Total cost", fmt.Sprintf("$%.4f", r.Costs.TotalCost)) + "\n")
	}

	b.WriteString(field("Duration", r.Stats.ProcessingTime.Round(time.Millisecond).String()))
	return b.String()
}

func renderDryRun(r *pipeline.DryRunResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dry Run"))
	b.WriteString("\n")

	t := newTable("SOURCE", "HTML", "EST. TOKENS", "STATUS")
	for _, s := range r.Sources {
		t.Row(s.Source.Name, humanize.Bytes(uint64(s.HTMLBytes)), humanize.Comma(int64(s.EstimatedTokens)), status(s.Err))
	}
	b.WriteString(t.Render() + "\n")

	b.WriteString(field("Total HTML", humanize.Bytes(uint64(r.TotalBytes))) + "\n")
	b.WriteString(field("Est. tokens", humanize.Comma(int64(r.EstimatedTokens))))
	return b.String()
}

func renderHistory(digests []core.Digest, loc *time.Location) string {
	if len(digests) == 0 {
		return warnStyle.Render("No digests stored yet. Run 'dailydigest run' to create one.")
	}

	t := newTable("DAY", "DATE", "CATEGORIES", "ARTICLES", "CREATED")
	for _, d := range core.SortDigestsNewestFirst(digests) {
		t.Row(d.Slug(loc), d.Date, fmt.Sprint(len(d.Categories)), fmt.Sprint(d.ArticleCount()), humanize.Time(d.Time(loc)))
	}
	return titleStyle.Render(fmt.Sprintf("Digest History (%d)", len(digests))) + "\n" + t.Render()
}
