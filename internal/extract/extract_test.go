package extract

import (
	"context"
	"dailydigest/internal/core"
	"dailydigest/internal/cost"
	"dailydigest/internal/llm"
	"errors"
	"strings"
	"testing"
)

// fakeClient returns a canned completion and records the last request.
type fakeClient struct {
	content string
	err     error
	last    llm.Request
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{ID: "gen-1", Model: "test-model", Content: f.content, PromptTokens: 10}, nil
}

var testSource = core.Source{Name: "Example News", URL: "https://news.example.com/world/"}

func TestExtract_TagsSourceAndResolvesURLs(t *testing.T) {
	client := &fakeClient{content: `{"articles":[
		{"title":"Absolute","url":"https://news.example.com/a","content":"First.","category":"Technology"},
		{"title":"Relative","url":"/2024/b","content":"Second.","category":"Politics"},
		{"title":"Nested","url":"c.html","content":"Third.","category":"World"}
	]}`}

	articles, err := NewLLMExtractor(client, Options{}).Extract(context.Background(), "<h2>x</h2>", testSource)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	expected := []string{
		"https://news.example.com/a",
		"https://news.example.com/2024/b",
		"https://news.example.com/world/c.html",
	}
	if len(articles) != len(expected) {
		t.Fatalf("Expected %d articles, got %d", len(expected), len(articles))
	}
	for i, a := range articles {
		if a.URL != expected[i] {
			t.Errorf("Article %d: expected URL %s, got %s", i, expected[i], a.URL)
		}
		if a.Source != "Example News" {
			t.Errorf("Article %d: expected source tag, got %q", i, a.Source)
		}
	}
	if articles[1].Category != "Politics" || articles[0].Content != "First." {
		t.Errorf("Unexpected article fields %+v", articles[:2])
	}
}

func TestExtract_RequestShape(t *testing.T) {
	client := &fakeClient{content: `{"articles":[]}`}

	_, err := NewLLMExtractor(client, Options{Model: "extract-model", MaxArticles: 10}).
		Extract(context.Background(), "<p>page body</p>", testSource)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if client.last.Name != SchemaName {
		t.Errorf("Expected schema name %s, got %s", SchemaName, client.last.Name)
	}
	if client.last.Model != "extract-model" {
		t.Errorf("Expected model extract-model, got %s", client.last.Model)
	}
	for _, want := range []string{"Example News", "<p>page body</p>", "up to 10", testSource.URL} {
		if !strings.Contains(client.last.Prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	items := client.last.Schema.Properties["articles"].Items
	if items == nil || len(items.Required) != 4 || items.AdditionalProperties != false {
		t.Errorf("Expected strict article item schema, got %+v", items)
	}
}

func TestExtract_DropsIncompleteAndCaps(t *testing.T) {
	client := &fakeClient{content: `{"articles":[
		{"title":"","url":"https://x/1","content":"","category":""},
		{"title":"No URL","url":"  ","content":"","category":""},
		{"title":"One","url":"https://x/2","content":"","category":""},
		{"title":"Two","url":"https://x/3","content":"","category":""},
		{"title":"Three","url":"https://x/4","content":"","category":""}
	]}`}

	articles, err := NewLLMExtractor(client, Options{MaxArticles: 2}).Extract(context.Background(), "", testSource)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(articles) != 2 || articles[0].Title != "One" || articles[1].Title != "Two" {
		t.Errorf("Expected first two complete articles, got %+v", articles)
	}
}

func TestExtract_MalformedPayload(t *testing.T) {
	client := &fakeClient{content: "Sorry, I cannot help with that."}

	_, err := NewLLMExtractor(client, Options{}).Extract(context.Background(), "", testSource)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("Expected ErrMalformedPayload, got %v", err)
	}
}

func TestExtract_TransportError(t *testing.T) {
	boom := errors.New("502 bad gateway")
	client := &fakeClient{err: boom}

	_, err := NewLLMExtractor(client, Options{}).Extract(context.Background(), "", testSource)
	if !errors.Is(err, boom) {
		t.Errorf("Expected transport error to be wrapped, got %v", err)
	}
}

type failingFetcher struct{}

func (failingFetcher) Generation(ctx context.Context, id string) (*cost.Generation, error) {
	return nil, cost.ErrUnauthorized
}

func TestExtract_TracksCost(t *testing.T) {
	client := &fakeClient{content: `{"articles":[{"title":"T","url":"https://x/1","content":"c","category":"k"}]}`}
	ledger := cost.NewLedger()

	extractor := NewLLMExtractor(client, Options{Tracker: cost.NewTracker(ledger, nil, cost.DefaultRetryPolicy(), nil)})
	if _, err := extractor.Extract(context.Background(), "", testSource); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	ops := ledger.Snapshot().Operations
	if len(ops) != 1 || ops[0].Kind != cost.KindExtraction || ops[0].Source != "Example News" {
		t.Errorf("Expected one extraction operation, got %+v", ops)
	}
}

func TestExtract_CostLookupFailureFailsSource(t *testing.T) {
	client := &fakeClient{content: `{"articles":[]}`}
	tracker := cost.NewTracker(cost.NewLedger(), failingFetcher{}, cost.DefaultRetryPolicy(), nil)

	_, err := NewLLMExtractor(client, Options{Tracker: tracker}).Extract(context.Background(), "", testSource)
	if !errors.Is(err, cost.ErrUnauthorized) {
		t.Errorf("Expected lookup failure to fail the source, got %v", err)
	}
}

func TestTruncateContent(t *testing.T) {
	html := "<p>one</p><p>two</p><p>three</p>"

	if got := truncateContent(html, 1000); got != html {
		t.Errorf("Expected short content unchanged, got %q", got)
	}
	if got := truncateContent(html, 22); got != "<p>one</p><p>two</p>" {
		t.Errorf("Expected cut at tag boundary, got %q", got)
	}
}
