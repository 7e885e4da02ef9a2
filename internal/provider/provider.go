// Package provider dispatches question generation to interchangeable
// LLM backends.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abiraja/quizforge/internal/question"
)

// Provider is one question-generation backend. Implementations share a
// capability set so the dispatcher can select and vet a backend without
// knowing which API sits behind it.
type Provider interface {
	// GenerateQuestions performs a single generation round trip and
	// returns the raw candidate items. No retry happens at this level.
	GenerateQuestions(ctx context.Context, req Request) (*Result, error)

	// Name returns the provider's registry name (e.g. "anthropic").
	Name() string

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string

	// SupportedTypes lists the question types this backend can produce.
	SupportedTypes() []question.Type

	// MaxContentLength is the largest source text this backend accepts.
	MaxContentLength() int

	// MaxCount is the largest question count per call.
	MaxCount() int

	// ValidateCredentials reports whether the backend is usable with
	// its current configuration. A non-nil error means dispatch to this
	// backend must fail immediately.
	ValidateCredentials() error
}

// Request describes one generation call.
type Request struct {
	Content    string
	Type       question.Type
	Count      int
	Difficulty question.Difficulty
}

// Result holds the outcome of one generation call.
type Result struct {
	Items []question.Raw
	Model string
	Usage Usage
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// caps is the static capability set embedded by concrete providers.
type caps struct {
	name       string
	types      []question.Type
	maxContent int
	maxCount   int
}

func (c caps) Name() string                    { return c.name }
func (c caps) SupportedTypes() []question.Type { return c.types }
func (c caps) MaxContentLength() int           { return c.maxContent }
func (c caps) MaxCount() int                   { return c.maxCount }

func (c caps) supports(t question.Type) bool {
	for _, st := range c.types {
		if st == t {
			return true
		}
	}
	return false
}

// batchEnvelope is the wire shape every backend is asked to return.
type batchEnvelope struct {
	Questions []question.Raw `json:"questions"`
}

// decodeItems parses the validated response JSON into raw items.
func decodeItems(content json.RawMessage) ([]question.Raw, error) {
	var env batchEnvelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, &ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("parse response envelope: %w", err),
		}
	}
	if len(env.Questions) == 0 {
		return nil, &ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("response contains no questions"),
		}
	}
	return env.Questions, nil
}
