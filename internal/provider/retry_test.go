package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetryRecoversFromRateLimit(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrRateLimit{}},
		MockResult{Items: mcqItems(2)},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	res, err := p.GenerateQuestions(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("items = %d, want 2", len(res.Items))
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetryRecoversFromTimeout(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrTimeout{Err: context.DeadlineExceeded}},
		MockResult{Items: mcqItems(1)},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	if _, err := p.GenerateQuestions(context.Background(), testRequest()); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetryDoesNotRetryInvalidResponse(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResult{Items: mcqItems(1)},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	_, err := p.GenerateQuestions(context.Background(), testRequest())
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	// Repeating a malformed-response call cannot succeed.
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetryDoesNotRetryUnavailable(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrProviderUnavailable{Err: errors.New("503")}},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	_, err := p.GenerateQuestions(context.Background(), testRequest())
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrRateLimit{}},
		MockResult{Err: &ErrRateLimit{}},
		MockResult{Err: &ErrRateLimit{}},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	_, err := p.GenerateQuestions(context.Background(), testRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want ErrRateLimit after exhaustion", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	const wait = 30 * time.Millisecond
	mock := NewMockProvider(
		MockResult{Err: &ErrRateLimit{RetryAfter: wait}},
		MockResult{Items: mcqItems(1)},
	)
	p := WithRetry(mock, fastRetryConfig(2))

	start := time.Now()
	if _, err := p.GenerateQuestions(context.Background(), testRequest()); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if elapsed := time.Since(start); elapsed < wait {
		t.Errorf("retried after %v, want at least %v", elapsed, wait)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrRateLimit{RetryAfter: time.Minute}},
		MockResult{Items: mcqItems(1)},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GenerateQuestions(ctx, testRequest())
	if err == nil {
		t.Fatal("expected error with canceled context")
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}
