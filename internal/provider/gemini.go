package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// GeminiProvider generates questions through the Google Gemini SDK.
type GeminiProvider struct {
	caps
	model  string
	apiKey string
	opts   GenerateOptions

	client *genai.Client
}

// NewGeminiProvider creates the Gemini backend. The SDK client is built
// lazily on first use because construction requires a context.
func NewGeminiProvider(cfg GeminiConfig, opts GenerateOptions) *GeminiProvider {
	return &GeminiProvider{
		caps: caps{
			name:       "gemini",
			types:      question.AllTypes(),
			maxContent: content.MaxLength,
			maxCount:   10,
		},
		model:  resolveModel(cfg.Model, geminiModels),
		apiKey: cfg.APIKey,
		opts:   opts,
	}
}

func (p *GeminiProvider) ModelID() string { return p.model }

func (p *GeminiProvider) ValidateCredentials() error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini API key is not configured")
	}
	return nil
}

func (p *GeminiProvider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &ErrProviderUnavailable{Err: fmt.Errorf("create Gemini client: %w", err)}
	}
	p.client = client
	return nil
}

func (p *GeminiProvider) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	schema := responseSchema(req.Type)

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(p.opts.MaxTokens),
		ResponseMIMEType: "application/json",
		ResponseSchema:   buildGeminiSchema(schema.Definition),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	if p.opts.Temperature > 0 {
		temp := float32(p.opts.Temperature)
		config.Temperature = &temp
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: buildUserMessage(req)}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	raw := json.RawMessage(result.Text())
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}

	res := &Result{Items: items, Model: p.model}
	if result.UsageMetadata != nil {
		res.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return res, nil
}

// buildGeminiSchema converts a JSON Schema definition map to a
// genai.Schema. Only the subset of keywords the Gemini API understands
// is carried over; full validation still runs locally afterwards.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}

	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if enums, ok := def["enum"].([]any); ok {
		for _, e := range enums {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}

	return schema
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{Err: err}
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
