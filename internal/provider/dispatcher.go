package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

// Dispatcher selects one of the registered backends and invokes it.
// Selection follows the caller-specified name, falling back to the
// configured default. There is no automatic fallback to a different
// provider: when the chosen backend is unavailable the dispatch fails.
type Dispatcher struct {
	providers   map[string]Provider
	defaultName string
	timeout     time.Duration
}

// NewDispatcher builds a Dispatcher with all known backends registered.
// Each backend is wrapped with logging and retry middleware
// (caller → retry → logging → base) so every attempt is audited.
func NewDispatcher(cfg Config, eventRepo store.EventRepo) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := GenerateOptions{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	bases := []Provider{
		NewAnthropicProvider(cfg.Anthropic, opts),
		NewOpenAIProvider(cfg.OpenAI, opts),
		NewGeminiProvider(cfg.Gemini, opts),
		NewDeepSeekProvider(cfg.DeepSeek, opts),
		NewMockProvider(),
	}

	providers := make(map[string]Provider, len(bases))
	for _, base := range bases {
		p := base
		if eventRepo != nil {
			p = WithLogging(p, eventRepo)
		}
		providers[base.Name()] = WithRetry(p, cfg.Retry)
	}

	return &Dispatcher{
		providers:   providers,
		defaultName: cfg.Default,
		timeout:     cfg.Timeout,
	}, nil
}

// Register adds or replaces a backend. Used by tests to inject mocks.
func (d *Dispatcher) Register(p Provider) {
	d.providers[p.Name()] = p
}

// Resolve returns the backend for the given name, or the default
// backend when name is empty.
func (d *Dispatcher) Resolve(name string) (Provider, error) {
	if name == "" {
		name = d.defaultName
	}
	p, ok := d.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Generate resolves a backend, vets the request against its capability
// set, and invokes it once with a bounded timeout. Items beyond the
// requested count are truncated.
func (d *Dispatcher) Generate(ctx context.Context, name string, req Request) (*Result, error) {
	p, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}

	if err := p.ValidateCredentials(); err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if !providerSupports(p, req.Type) {
		return nil, fmt.Errorf("%w: %s cannot generate %s", ErrUnsupportedType, p.Name(), req.Type)
	}
	// Rune count, matching how content validation measures length.
	if utf8.RuneCountInString(req.Content) > p.MaxContentLength() {
		return nil, fmt.Errorf("content exceeds %s limit of %d characters", p.Name(), p.MaxContentLength())
	}
	if req.Count < 1 || req.Count > p.MaxCount() {
		return nil, fmt.Errorf("count must be between 1 and %d for %s", p.MaxCount(), p.Name())
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := p.GenerateQuestions(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ErrTimeout{Err: err}
		}
		return nil, err
	}

	if len(res.Items) > req.Count {
		res.Items = res.Items[:req.Count]
	}
	return res, nil
}

// Availability reports which registered backends are credentialed.
func (d *Dispatcher) Availability() map[string]bool {
	out := make(map[string]bool, len(d.providers))
	for name, p := range d.providers {
		out[name] = p.ValidateCredentials() == nil
	}
	return out
}

// Names returns the registered backend names in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.providers))
	for name := range d.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the configured default backend name.
func (d *Dispatcher) DefaultName() string { return d.defaultName }

func providerSupports(p Provider, t question.Type) bool {
	for _, st := range p.SupportedTypes() {
		if st == t {
			return true
		}
	}
	return false
}
