package provider

import (
	"context"
	"sync"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

// MockResult is a canned outcome for the MockProvider.
type MockResult struct {
	Items []question.Raw
	Usage Usage
	Err   error
}

// MockProvider is a deterministic Provider for testing. It returns
// canned results in FIFO order and records all requests.
type MockProvider struct {
	caps

	mu      sync.Mutex
	results []MockResult
	Calls   []Request

	credentialsErr error
}

// NewMockProvider creates a MockProvider with the given canned results.
func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{
		caps: caps{
			name:       "mock",
			types:      question.AllTypes(),
			maxContent: content.MaxLength,
			maxCount:   10,
		},
		results: results,
	}
}

// GenerateQuestions returns the next canned result or
// ErrProviderUnavailable if the queue is empty.
func (m *MockProvider) GenerateQuestions(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.results) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	res := m.results[0]
	m.results = m.results[1:]

	if res.Err != nil {
		return nil, res.Err
	}

	return &Result{
		Items: res.Items,
		Model: "mock",
		Usage: res.Usage,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) ValidateCredentials() error { return m.credentialsErr }

// FailCredentials makes ValidateCredentials return the given error.
func (m *MockProvider) FailCredentials(err error) { m.credentialsErr = err }

// AddResult appends a canned result to the queue.
func (m *MockProvider) AddResult(res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
}

// CallCount returns the number of GenerateQuestions calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
