package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "utc morning",
			input:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			expected: "2024-01-15",
		},
		{
			name:     "last second of year",
			input:    time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			expected: "2023-12-31",
		},
		{
			name:     "uses the time's own location",
			input:    time.Date(2024, 3, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			expected: "2024-03-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateKey(tt.input); got != tt.expected {
				t.Errorf("DateKey(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
			// Format-stable across calls
			if again := DateKey(tt.input); again != tt.expected {
				t.Errorf("DateKey is not deterministic: %q then %q", tt.expected, again)
			}
		})
	}
}

func TestDigestSlugFromTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	d := Digest{Timestamp: ts.UnixMilli()}

	if got := d.Slug(time.UTC); got != "2024-01-15" {
		t.Errorf("Expected slug 2024-01-15, got %s", got)
	}
}

func TestHumanDate(t *testing.T) {
	tests := []struct {
		input    time.Time
		expected string
	}{
		{time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), "January 1st, 2024"},
		{time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), "January 2nd, 2024"},
		{time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC), "March 13th, 2024"},
		{time.Date(2024, 10, 23, 8, 0, 0, 0, time.UTC), "October 23rd, 2024"},
	}

	for _, tt := range tests {
		if got := HumanDate(tt.input); got != tt.expected {
			t.Errorf("HumanDate(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestArticleCount(t *testing.T) {
	d := Digest{
		Categories: []Category{
			{Category: "Tech", Articles: []CategoryArticle{{Title: "a"}, {Title: "b"}}},
			{Category: "World", Articles: []CategoryArticle{{Title: "c"}}},
			{Category: "Empty"},
		},
	}

	if got := d.ArticleCount(); got != 3 {
		t.Errorf("Expected 3 articles, got %d", got)
	}
}

func TestSortDigestsNewestFirst(t *testing.T) {
	digests := []Digest{
		{Date: "old", Timestamp: 1000},
		{Date: "new", Timestamp: 3000},
		{Date: "mid", Timestamp: 2000},
	}

	sorted := SortDigestsNewestFirst(digests)

	want := []string{"new", "mid", "old"}
	for i, d := range sorted {
		if d.Date != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], d.Date)
		}
	}

	// Input must be left untouched
	if digests[0].Date != "old" {
		t.Error("SortDigestsNewestFirst should not reorder its input")
	}
}

func TestDigestJSONFieldNames(t *testing.T) {
	d := Digest{
		Date:      "January 15th, 2024",
		IntroText: "Intro",
		Categories: []Category{{
			Category: "Tech",
			Articles: []CategoryArticle{{Title: "T", URL: "https://x", Source: "S"}},
		}},
		Timestamp: 1705312800000,
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)

	for _, field := range []string{`"date"`, `"introText"`, `"categories"`, `"timestamp"`, `"category"`, `"articles"`} {
		if !strings.Contains(out, field) {
			t.Errorf("Expected JSON to contain %s, got %s", field, out)
		}
	}
	// Optional fields are omitted when empty
	if strings.Contains(out, `"summary"`) || strings.Contains(out, `"commentary"`) {
		t.Errorf("Expected empty summary and commentary to be omitted, got %s", out)
	}
}
