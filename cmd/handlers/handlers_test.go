package handlers

import (
	"dailydigest/internal/config"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/pipeline"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"run", "history", "rebuild", "serve"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %s", name)
		}
	}

	for _, flag := range []string{"no-email", "dry-run"} {
		if root.Flags().Lookup(flag) == nil {
			t.Errorf("Expected root command to accept --%s", flag)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected persistent --config flag")
	}
}

func TestRequirementsFor(t *testing.T) {
	tests := []struct {
		name string
		opts runOptions
		want config.Requirements
	}{
		{"full run", runOptions{}, config.RunRequirements},
		{"no email", runOptions{noEmail: true}, config.Requirements{AI: true}},
		{"dry run", runOptions{dryRun: true}, config.SiteRequirements},
		{"dry run wins", runOptions{dryRun: true, noEmail: true}, config.SiteRequirements},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requirementsFor(tt.opts); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRenderRunReport(t *testing.T) {
	digest := core.Digest{Date: "January 15th, 2024"}
	result := &pipeline.Result{
		RunID: "run-123",
		Sources: []pipeline.SourceResult{
			{Source: core.Source{Name: "Hacker News"}, Articles: make([]core.Article, 5)},
			{Source: core.Source{Name: "BBC News"}, Err: errors.New("403 Forbidden")},
		},
		Digest:  &digest,
		WebURL:  "https://digest.example.com/digests/2024-01-15.html",
		Emailed: true,
		Stats:   pipeline.ProcessingStats{TotalSources: 2, FailedSources: 1, Articles: 5, Categories: 2},
		Costs: cost.Snapshot{
			Models:    []cost.ModelTotals{{Model: "google/gemini-2.0-flash-001", Calls: 2, Cost: 0.0123, PromptTokens: 12000}},
			TotalCost: 0.0123,
		},
	}

	out := renderRunReport(result)
	for _, want := range []string{
		"run-123", "Hacker News", "BBC News", "403 Forbidden",
		"January 15th, 2024", "1 of 2", result.WebURL, "sent",
		"google/gemini-2.0-flash-001", "12,000", "$0.0123",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderRunReport_NoArticles(t *testing.T) {
	out := renderRunReport(&pipeline.Result{RunID: "r", NoArticles: true})
	if !strings.Contains(out, "No articles collected") {
		t.Errorf("Expected no-articles notice, got:\n%s", out)
	}
	if strings.Contains(out, "Email") {
		t.Error("Expected no email line without a digest")
	}
}

func TestRenderDryRun(t *testing.T) {
	out := renderDryRun(&pipeline.DryRunResult{
		Sources: []pipeline.DryRunSource{
			{Source: core.Source{Name: "NPR"}, HTMLBytes: 2048, EstimatedTokens: 1500},
		},
		TotalBytes:      2048,
		EstimatedTokens: 1500,
	})

	for _, want := range []string{"NPR", "2.0 kB", "1,500"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected dry run report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	if out := renderHistory(nil, time.UTC); !strings.Contains(out, "No digests stored yet") {
		t.Errorf("Expected empty notice, got %s", out)
	}

	digests := []core.Digest{
		{Date: "January 14th, 2024", Timestamp: time.Date(2024, 1, 14, 10, 0, 0, 0, time.UTC).UnixMilli()},
		{
			Date:      "January 15th, 2024",
			Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).UnixMilli(),
			Categories: []core.Category{{
				Category: "Tech",
				Articles: []core.CategoryArticle{{Title: "a"}, {Title: "b"}},
			}},
		},
	}

	out := renderHistory(digests, time.UTC)
	newer := strings.Index(out, "2024-01-15")
	older := strings.Index(out, "2024-01-14")
	if newer < 0 || older < 0 || newer > older {
		t.Errorf("Expected newest digest first, got:\n%s", out)
	}
	if !strings.Contains(out, "Digest History (2)") {
		t.Errorf("Expected history title with count, got:\n%s", out)
	}
}

func TestLatestDigests(t *testing.T) {
	day := func(d int) core.Digest {
		return core.Digest{Timestamp: time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC).UnixMilli()}
	}
	// Stored out of order, as after a manual edit or restore
	stored := []core.Digest{day(15), day(10), day(17), day(12), day(16)}

	tests := []struct {
		name  string
		limit int
		want  []int
	}{
		{"no limit", 0, []int{17, 16, 15, 12, 10}},
		{"limit keeps newest", 2, []int{17, 16}},
		{"limit above count", 9, []int{17, 16, 15, 12, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := latestDigests(stored, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d digests, got %d", len(tt.want), len(got))
			}
			for i, d := range tt.want {
				if got[i].Timestamp != day(d).Timestamp {
					t.Errorf("Position %d: expected January %d, got %v", i, d, time.UnixMilli(got[i].Timestamp).UTC())
				}
			}
		})
	}
}
