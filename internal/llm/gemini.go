package llm

import (
	"context"
	"dailydigest/internal/config"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the request nor the configuration names a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini calls the Google Gemini API directly with a JSON response schema.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client from configuration.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, model string) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Complete generates content constrained to the request schema.
func (g *Gemini) Complete(ctx context.Context, req Request) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: req.Prompt}},
		Role:  "user",
	}}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ToGenaiSchema(req.Schema),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini completion %s failed: %w", req.Name, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini completion %s: %w", req.Name, ErrEmptyResponse)
	}

	completion := &Completion{
		ID:      resp.ResponseID,
		Model:   model,
		Content: text,
	}
	if resp.ModelVersion != "" {
		completion.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		completion.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}

// ToGenaiSchema converts a JSON schema definition into Gemini's schema type.
// Gemini has no additionalProperties; property order follows the sorted key names.
func ToGenaiSchema(def jsonschema.Definition) *genai.Schema {
	schema := &genai.Schema{
		Type:        genaiType(def.Type),
		Description: def.Description,
		Required:    def.Required,
		Enum:        def.Enum,
	}

	if len(def.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(def.Properties))
		keys := make([]string, 0, len(def.Properties))
		for name, prop := range def.Properties {
			schema.Properties[name] = ToGenaiSchema(prop)
			keys = append(keys, name)
		}
		sort.Strings(keys)
		schema.PropertyOrdering = keys
	}

	if def.Items != nil {
		schema.Items = ToGenaiSchema(*def.Items)
	}

	return schema
}

func genaiType(t jsonschema.DataType) genai.Type {
	switch t {
	case jsonschema.Object:
		return genai.TypeObject
	case jsonschema.Array:
		return genai.TypeArray
	case jsonschema.Number:
		return genai.TypeNumber
	case jsonschema.Integer:
		return genai.TypeInteger
	case jsonschema.Boolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
