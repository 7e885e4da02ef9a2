package provider

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abiraja/quizforge/internal/question"
)

// RetryProvider is a decorator that retries rate-limit and timeout
// errors with exponential backoff and jitter. Validation failures,
// malformed responses, and unavailable backends are never retried:
// repeating those calls cannot succeed and only burns quota.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		res, err := r.inner.GenerateQuestions(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !shouldRetry(ctx, err) {
			return nil, err
		}

		// Last attempt: return the error without sleeping.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) Name() string                    { return r.inner.Name() }
func (r *RetryProvider) ModelID() string                 { return r.inner.ModelID() }
func (r *RetryProvider) SupportedTypes() []question.Type { return r.inner.SupportedTypes() }
func (r *RetryProvider) MaxContentLength() int           { return r.inner.MaxContentLength() }
func (r *RetryProvider) MaxCount() int                   { return r.inner.MaxCount() }
func (r *RetryProvider) ValidateCredentials() error      { return r.inner.ValidateCredentials() }

// shouldRetry reports whether an error class is transient enough to
// warrant another attempt.
func shouldRetry(ctx context.Context, err error) bool {
	// The caller's own deadline or cancellation ends the whole call.
	if ctx.Err() != nil {
		return false
	}

	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var to *ErrTimeout
	if errors.As(err, &to) {
		return true
	}

	return false
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
