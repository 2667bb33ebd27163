package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("empty response from model")

// Client is the narrow completion capability used by the extractor and summarizer.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Request asks for a single completion whose output conforms to Schema.
type Request struct {
	Name   string                // Schema name, e.g. "news_articles"
	Schema jsonschema.Definition // Strict JSON schema for the response
	Prompt string
	Model  string // Optional; providers fall back to their configured model
}

// Completion is a provider response reduced to what the pipeline needs.
type Completion struct {
	ID               string // Provider generation id, used for cost lookups
	Model            string
	Content          string // Raw JSON text
	PromptTokens     int
	CompletionTokens int
}

// StripCodeFence removes a surrounding ```json fence some models add despite strict output.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
