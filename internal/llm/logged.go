package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggedClient wraps a Client and logs every completion with its duration and token usage.
type LoggedClient struct {
	client Client
	log    *slog.Logger
}

// NewLoggedClient wraps client. A nil logger uses slog.Default().
func NewLoggedClient(client Client, log *slog.Logger) *LoggedClient {
	if log == nil {
		log = slog.Default()
	}
	return &LoggedClient{client: client, log: log}
}

// Complete delegates to the wrapped client.
func (l *LoggedClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	completion, err := l.client.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		l.log.Warn("Completion failed", "schema", req.Name, "duration", duration, "error", err.Error())
		return nil, err
	}

	l.log.Debug("Completion finished",
		"schema", req.Name,
		"generation_id", completion.ID,
		"model", completion.Model,
		"prompt_tokens", completion.PromptTokens,
		"completion_tokens", completion.CompletionTokens,
		"duration", duration)
	return completion, nil
}
