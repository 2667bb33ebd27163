package cost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrGenerationNotFound means the generation id is permanently unresolvable.
	ErrGenerationNotFound = errors.New("generation not found")
	// ErrUnauthorized means the API key may not read generation metadata.
	ErrUnauthorized = errors.New("unauthorized generation lookup")
)

// Generation is the billing metadata for one completion.
type Generation struct {
	ID               string
	Model            string
	Provider         string
	TotalCost        float64
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// GenerationFetcher performs a single metadata lookup. Retries are applied by Lookup.
type GenerationFetcher interface {
	Generation(ctx context.Context, id string) (*Generation, error)
}

// StatusError is a non-2xx lookup response that may be retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation lookup returned status %d: %s", e.StatusCode, e.Body)
}

// OpenRouterGenerations reads metadata from OpenRouter's GET /generation endpoint.
type OpenRouterGenerations struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewOpenRouterGenerations creates a fetcher for the given API root.
func NewOpenRouterGenerations(baseURL, apiKey string, timeout time.Duration) *OpenRouterGenerations {
	return &OpenRouterGenerations{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type generationResponse struct {
	Data struct {
		ID               string  `json:"id"`
		TotalCost        float64 `json:"total_cost"`
		Model            string  `json:"model"`
		ProviderName     string  `json:"provider_name"`
		TokensPrompt     int     `json:"tokens_prompt"`
		TokensCompletion int     `json:"tokens_completion"`
		Latency          float64 `json:"latency"` // milliseconds
	} `json:"data"`
}

// Generation fetches metadata for id once.
func (o *OpenRouterGenerations) Generation(ctx context.Context, id string) (*Generation, error) {
	endpoint := o.BaseURL + "/generation?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrGenerationNotFound, id)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, id)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return &Generation{
		ID:               parsed.Data.ID,
		Model:            parsed.Data.Model,
		Provider:         parsed.Data.ProviderName,
		TotalCost:        parsed.Data.TotalCost,
		PromptTokens:     parsed.Data.TokensPrompt,
		CompletionTokens: parsed.Data.TokensCompletion,
		Latency:          time.Duration(parsed.Data.Latency * float64(time.Millisecond)),
	}, nil
}
