package llm

import (
	"context"
	"dailydigest/internal/config"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenRouterURL is the OpenRouter OpenAI-compatible API root.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouter talks to OpenRouter's chat completions endpoint with strict JSON schema output.
type OpenRouter struct {
	client *openai.Client
	model  string
}

// NewOpenRouter creates a client from configuration. The model is used when a request names none.
func NewOpenRouter(cfg config.OpenRouterConfig, model string) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required. Set OPENROUTER_API_KEY")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultOpenRouterURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.Duration(cfg.Timeout, 120*time.Second),
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
		},
	}

	return &OpenRouter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Complete sends one chat completion request. Non-2xx responses surface as *openai.APIError.
func (o *OpenRouter) Complete(ctx context.Context, req Request) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	schema := req.Schema
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Name,
				Schema: &schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter completion %s failed: %w", req.Name, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openrouter completion %s: %w", req.Name, ErrEmptyResponse)
	}

	return &Completion{
		ID:               resp.ID,
		Model:            resp.Model,
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// headerTransport adds the attribution headers OpenRouter uses for app rankings.
type headerTransport struct {
	base    http.RoundTripper
	referer string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("HTTP-Referer", t.referer)
	clone.Header.Set("X-Title", "Daily News Digest")
	return t.base.RoundTrip(clone)
}
