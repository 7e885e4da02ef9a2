package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// AnthropicProvider generates questions through the Anthropic SDK.
type AnthropicProvider struct {
	caps
	client *anthropic.Client
	model  string
	apiKey string
	opts   GenerateOptions
}

// GenerateOptions are the per-call knobs shared by all SDK providers.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// NewAnthropicProvider creates the Anthropic backend. Construction
// succeeds without credentials; ValidateCredentials reports usability.
func NewAnthropicProvider(cfg AnthropicConfig, opts GenerateOptions) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &AnthropicProvider{
		caps: caps{
			name:       "anthropic",
			types:      question.AllTypes(),
			maxContent: content.MaxLength,
			maxCount:   10,
		},
		client: &client,
		model:  resolveModel(cfg.Model, anthropicModels),
		apiKey: cfg.APIKey,
		opts:   opts,
	}
}

func (p *AnthropicProvider) ModelID() string { return p.model }

func (p *AnthropicProvider) ValidateCredentials() error {
	if p.apiKey == "" {
		return fmt.Errorf("anthropic API key is not configured")
	}
	return nil
}

func (p *AnthropicProvider) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	schema := responseSchema(req.Type)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.opts.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(buildUserMessage(req)),
				},
			},
		},
		OutputConfig: anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: schema.Definition,
			},
		},
	}

	if p.opts.Temperature > 0 {
		params.Temperature = anthropic.Float(p.opts.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	raw, err := extractAnthropicContent(msg)
	if err != nil {
		return nil, err
	}
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		Items: items,
		Model: string(msg.Model),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

func extractAnthropicContent(msg *anthropic.Message) (json.RawMessage, error) {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return json.RawMessage(block.Text), nil
		}
	}
	return nil, &ErrInvalidResponse{
		Err: fmt.Errorf("no text content in Anthropic response"),
	}
}

func mapAnthropicError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{Err: err}
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names are passed through so direct model IDs keep working.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
