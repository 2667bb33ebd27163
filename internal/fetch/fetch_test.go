package fetch

import (
	"context"
	"dailydigest/internal/config"
	"dailydigest/internal/core"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPFetcher_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Front page</h1></body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher("DigestBot/1.0", 5*time.Second, nil)
	html, err := f.Fetch(context.Background(), core.Source{Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !strings.Contains(html, "Front page") {
		t.Errorf("Expected page content, got %s", html)
	}
	if gotUA != "DigestBot/1.0" {
		t.Errorf("Expected user agent DigestBot/1.0, got %s", gotUA)
	}
}

func TestHTTPFetcher_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewHTTPFetcher("", 5*time.Second, nil)
	_, err := f.Fetch(context.Background(), core.Source{Name: "Test", URL: server.URL})
	if err == nil {
		t.Fatal("Expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher("", 5*time.Second, nil)
	if _, err := f.Fetch(ctx, core.Source{Name: "Test", URL: server.URL}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestSanitizingFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>track()</script><h2><a href="/story">Story</a></h2></body></html>`))
	}))
	defer server.Close()

	f := Sanitizing(NewHTTPFetcher("", 5*time.Second, nil))
	html, err := f.Fetch(context.Background(), core.Source{Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if strings.Contains(html, "track()") {
		t.Errorf("Expected script to be removed, got %s", html)
	}
	if !strings.Contains(html, `href="`+server.URL+`/story"`) {
		t.Errorf("Expected absolute story link, got %s", html)
	}
}

func TestNew_SelectsMode(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Fetch
		check   func(Fetcher) bool
		wantErr bool
	}{
		{
			name:  "http",
			cfg:   config.Fetch{Mode: "http"},
			check: func(f Fetcher) bool { _, ok := f.(*HTTPFetcher); return ok },
		},
		{
			name:  "browser",
			cfg:   config.Fetch{Mode: "browser"},
			check: func(f Fetcher) bool { _, ok := f.(*BrowserFetcher); return ok },
		},
		{
			name:  "sanitized",
			cfg:   config.Fetch{Mode: "http", Sanitize: true},
			check: func(f Fetcher) bool { _, ok := f.(*sanitizingFetcher); return ok },
		},
		{
			name:    "unknown",
			cfg:     config.Fetch{Mode: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(f) {
				t.Errorf("Unexpected fetcher type %T", f)
			}
		})
	}
}

func TestNewBrowserFetcherDefaults(t *testing.T) {
	f := NewBrowserFetcher(BrowserOptions{}, nil)

	if f.opts.NavigationTimeout != DefaultNavigationTimeout {
		t.Errorf("Expected default navigation timeout, got %v", f.opts.NavigationTimeout)
	}
	if f.opts.SelectorTimeout != DefaultSelectorTimeout {
		t.Errorf("Expected default selector timeout, got %v", f.opts.SelectorTimeout)
	}
	if len(f.opts.Selectors) != len(DefaultContentSelectors) {
		t.Errorf("Expected default selectors, got %v", f.opts.Selectors)
	}
}
