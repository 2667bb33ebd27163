package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// newTestViper returns a viper instance with defaults and a minimal valid setup
func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.Set("ai.openrouter.api_key", "test-key")
	v.Set("email.smtp.host", "smtp.example.com")
	v.Set("email.smtp.username", "user")
	v.Set("email.smtp.password", "secret")
	v.Set("email.from", "digest@example.com")
	v.Set("email.to", "reader@example.com")
	return v
}

func TestBuild_Defaults(t *testing.T) {
	cfg, err := build(newTestViper())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if cfg.AI.Provider != "openrouter" {
		t.Errorf("Expected provider openrouter, got %s", cfg.AI.Provider)
	}
	if cfg.Pipeline.BatchSize != 3 {
		t.Errorf("Expected batch size 3, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.MaxArticlesPerSource != 5 {
		t.Errorf("Expected 5 articles per source, got %d", cfg.Pipeline.MaxArticlesPerSource)
	}
	if cfg.Store.Retention != 30 {
		t.Errorf("Expected retention 30, got %d", cfg.Store.Retention)
	}
	if cfg.Store.Path != "digests-data.json" {
		t.Errorf("Expected store path digests-data.json, got %s", cfg.Store.Path)
	}
	if cfg.Site.OutputDir != "public" {
		t.Errorf("Expected output dir public, got %s", cfg.Site.OutputDir)
	}
	if len(cfg.Sources) != 9 {
		t.Errorf("Expected 9 default sources, got %d", len(cfg.Sources))
	}
	if len(cfg.Fetch.ContentSelectors) == 0 {
		t.Error("Expected default content selectors")
	}
	if !cfg.Fetch.Sanitize {
		t.Error("Sanitization should be enabled by default")
	}
}

func TestBuild_MissingRequiredValues(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	_, err := build(v)
	if err == nil {
		t.Fatal("Expected error for missing configuration")
	}

	for _, want := range []string{"OPENROUTER_API_KEY", "SMTP_HOST", "SMTP_USER", "SMTP_PASS", "EMAIL_FROM", "EMAIL_TO"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestBuild_EmailDisabledSkipsSMTPValidation(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ai.openrouter.api_key", "test-key")
	v.Set("email.enabled", false)

	if _, err := build(v); err != nil {
		t.Errorf("Expected no error with email disabled, got %v", err)
	}
}

func TestBuildFor_Requirements(t *testing.T) {
	tests := []struct {
		name    string
		req     Requirements
		wantErr bool
	}{
		{"full run", RunRequirements, true},
		{"run without email", Requirements{AI: true}, true},
		{"site only", SiteRequirements, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)

			_, err := buildFor(v, tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}

	// Structural checks still apply without credentials
	v := viper.New()
	setDefaults(v)
	v.Set("store.retention", 0)
	if _, err := buildFor(v, SiteRequirements); err == nil {
		t.Error("Expected retention error for site-only requirements")
	}
}

func TestBuildFor_RunWithoutEmailIgnoresSMTP(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ai.openrouter.api_key", "test-key")

	if _, err := buildFor(v, Requirements{AI: true}); err != nil {
		t.Errorf("Expected SMTP settings to be ignored, got %v", err)
	}
}

func TestBuild_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr string
	}{
		{"malformed sender", "email.from", "not-an-email", "EMAIL_FROM"},
		{"bad port", "email.smtp.port", 0, "SMTP port"},
		{"unknown provider", "ai.provider", "acme", "Unknown AI provider"},
		{"unknown fetch mode", "fetch.mode", "carrier-pigeon", "Unknown fetch mode"},
		{"zero batch size", "pipeline.batch_size", 0, "batch_size"},
		{"zero retention", "store.retention", 0, "retention"},
		{"relative site url", "site.base_url", "digest.example.com", "SITE_URL"},
		{"bad duration", "pipeline.batch_pause", "soon", "invalid duration"},
		{"bad timezone", "app.timezone", "Mars/Olympus", "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper()
			v.Set(tt.key, tt.value)

			_, err := build(v)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuild_GeminiProviderNeedsGeminiKey(t *testing.T) {
	v := newTestViper()
	v.Set("ai.provider", "gemini")

	_, err := build(v)
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Expected Gemini key error, got %v", err)
	}

	v.Set("ai.gemini.api_key", "g-key")
	if _, err := build(v); err != nil {
		t.Errorf("Expected no error once Gemini key is set, got %v", err)
	}
}

func TestBuild_TrimsSiteURL(t *testing.T) {
	v := newTestViper()
	v.Set("site.base_url", "https://digest.example.com/")

	cfg, err := build(v)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if cfg.Site.BaseURL != "https://digest.example.com" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.Site.BaseURL)
	}
}

func TestLoad_FromEnvironmentAndFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "digest.yaml")
	content := `
pipeline:
  batch_size: 1
sources:
  - name: Example
    url: https://example.com
`
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "user")
	t.Setenv("SMTP_PASS", "pass")
	t.Setenv("EMAIL_FROM", "from@example.com")
	t.Setenv("EMAIL_TO", "to@example.com")
	t.Setenv("SITE_URL", "https://digest.example.com")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.OpenRouter.APIKey != "env-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.AI.OpenRouter.APIKey)
	}
	if cfg.Email.SMTP.Port != 587 {
		t.Errorf("Expected SMTP port 587, got %d", cfg.Email.SMTP.Port)
	}
	if cfg.Site.BaseURL != "https://digest.example.com" {
		t.Errorf("Expected site URL from environment, got %s", cfg.Site.BaseURL)
	}
	if cfg.Pipeline.BatchSize != 1 {
		t.Errorf("Expected batch size from file, got %d", cfg.Pipeline.BatchSize)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Example" {
		t.Errorf("Expected sources from file, got %+v", cfg.Sources)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", 5*time.Second); got != 5*time.Second {
		t.Errorf("Expected fallback for empty value, got %v", got)
	}
	if got := Duration("250ms", time.Second); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", got)
	}
	if got := Duration("nonsense", time.Second); got != time.Second {
		t.Errorf("Expected fallback for invalid value, got %v", got)
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	if cfg.Location() != time.Local {
		t.Error("Expected local zone when timezone is empty")
	}

	cfg.App.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Errorf("Expected UTC, got %s", cfg.Location())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/digests.json"); got != filepath.Join(home, "digests.json") {
		t.Errorf("Expected home expansion, got %s", got)
	}
	if got := expandPath("relative/path.json"); got != "relative/path.json" {
		t.Errorf("Expected relative path unchanged, got %s", got)
	}
}
