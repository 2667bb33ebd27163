package logger

import (
	"bytes"
	"dailydigest/internal/config"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetReplacesDefault(t *testing.T) {
	prev := Get()
	defer Set(prev)

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	Set(l)

	if Get() != l {
		t.Error("Expected Get to return the logger passed to Set")
	}
	slog.Error("fetch failed", "source", "Example")

	out := buf.String()
	if !strings.Contains(out, "fetch failed") {
		t.Errorf("Expected message in output, got %s", out)
	}
	if !strings.Contains(out, "source=Example") {
		t.Errorf("Expected source attribute in output, got %s", out)
	}
}

func TestConfigureWritesLogFile(t *testing.T) {
	prev := Get()
	defer Set(prev)

	path := filepath.Join(t.TempDir(), "digest.log")
	closer, err := Configure(config.Logging{
		Level:      "debug",
		Format:     "json",
		FilePath:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	Get().Debug("written to file", "key", "value")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written to file"`) {
		t.Errorf("Expected JSON log line in file, got %s", data)
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if _, err := Configure(config.Logging{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}
