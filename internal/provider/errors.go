package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownProvider indicates the requested provider name is not
// registered with the dispatcher.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrUnsupportedType indicates the selected backend cannot produce the
// requested question type.
var ErrUnsupportedType = errors.New("provider does not support the requested question type")

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend returned content that does
// not conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid provider response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the backend is down, unreachable, or
// not credentialed.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrTimeout indicates the generation call exceeded its deadline.
type ErrTimeout struct {
	Err error
}

func (e *ErrTimeout) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider call timed out: %v", e.Err)
	}
	return "provider call timed out"
}

func (e *ErrTimeout) Unwrap() error { return e.Err }
