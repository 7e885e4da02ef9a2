package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIProvider generates questions through the OpenAI SDK. It also
// serves OpenAI-compatible APIs (DeepSeek) via BaseURL.
type OpenAIProvider struct {
	caps
	client *openai.Client
	model  string
	apiKey string
	opts   GenerateOptions
}

// NewOpenAIProvider creates the OpenAI backend.
func NewOpenAIProvider(cfg OpenAIConfig, opts GenerateOptions) *OpenAIProvider {
	return newOpenAICompatible("openai", cfg, opts)
}

func newOpenAICompatible(name string, cfg OpenAIConfig, opts GenerateOptions) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		caps: caps{
			name:       name,
			types:      question.AllTypes(),
			maxContent: content.MaxLength,
			maxCount:   10,
		},
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, openaiModels),
		apiKey: cfg.APIKey,
		opts:   opts,
	}
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) ValidateCredentials() error {
	if p.apiKey == "" {
		return fmt.Errorf("%s API key is not configured", p.name)
	}
	return nil
}

func (p *OpenAIProvider) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	schema := responseSchema(req.Type)

	schemaBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
		MaxCompletionTokens: p.opts.MaxTokens,
		Temperature:         float32(p.opts.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: json.RawMessage(schemaBytes),
				Strict: true,
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in %s response", p.name),
		}
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		Items: items,
		Model: resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
