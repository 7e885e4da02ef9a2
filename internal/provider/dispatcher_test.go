package provider

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abiraja/quizforge/internal/question"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Default = "mock"
	cfg.Retry.InitialWait = 0
	cfg.Retry.MaxWait = 0
	return cfg
}

func testRequest() Request {
	return Request{
		Content:    strings.Repeat("The French Revolution began in 1789. ", 10),
		Type:       question.TypeMCQ,
		Count:      3,
		Difficulty: question.DifficultyMedium,
	}
}

func mcqItems(n int) []question.Raw {
	items := make([]question.Raw, n)
	for i := range items {
		items[i] = question.Raw{
			Text:       "What year did the revolution begin?",
			Payload:    json.RawMessage(`{"options":{"a":"1789","b":"1815"},"correct_answer":"a"}`),
			Confidence: 0.9,
		}
	}
	return items
}

func TestDispatcherResolveDefault(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	p, err := d.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\"): %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("default provider = %s, want mock", p.Name())
	}
}

func TestDispatcherResolveUnknown(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	if _, err := d.Resolve("llamafarm"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Resolve(unknown) = %v, want ErrUnknownProvider", err)
	}
}

func TestDispatcherRejectsUnknownDefault(t *testing.T) {
	cfg := testConfig()
	cfg.Default = "nonexistent"
	if _, err := NewDispatcher(cfg, nil); err == nil {
		t.Error("expected error for unknown default provider")
	}
}

func TestDispatcherGenerate(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	mock := NewMockProvider(MockResult{Items: mcqItems(3), Usage: Usage{InputTokens: 100, OutputTokens: 200}})
	d.Register(mock)

	res, err := d.Generate(context.Background(), "mock", testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("items = %d, want 3", len(res.Items))
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider calls = %d, want 1", mock.CallCount())
	}
}

func TestDispatcherTruncatesExcessItems(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	d.Register(NewMockProvider(MockResult{Items: mcqItems(7)}))

	req := testRequest()
	req.Count = 3
	res, err := d.Generate(context.Background(), "mock", req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("items = %d, want 3 after truncation", len(res.Items))
	}
}

func TestDispatcherMissingCredentials(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	mock := NewMockProvider(MockResult{Items: mcqItems(3)})
	mock.FailCredentials(errors.New("no API key"))
	d.Register(mock)

	_, err = d.Generate(context.Background(), "mock", testRequest())
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("Generate = %v, want ErrProviderUnavailable", err)
	}
	// No fallback: the call must fail without invoking the backend.
	if mock.CallCount() != 0 {
		t.Errorf("provider calls = %d, want 0", mock.CallCount())
	}
}

func TestDispatcherUnsupportedType(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	mock := NewMockProvider(MockResult{Items: mcqItems(3)})
	mock.caps.types = []question.Type{question.TypeTrueFalse}
	d.Register(mock)

	_, err = d.Generate(context.Background(), "mock", testRequest())
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Generate = %v, want ErrUnsupportedType", err)
	}
}

func TestDispatcherCountBounds(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	d.Register(NewMockProvider(MockResult{Items: mcqItems(1)}))

	for _, count := range []int{0, -1, 11} {
		req := testRequest()
		req.Count = count
		if _, err := d.Generate(context.Background(), "mock", req); err == nil {
			t.Errorf("count %d accepted, want error", count)
		}
	}
}

func TestDispatcherContentTooLong(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	mock := NewMockProvider(MockResult{Items: mcqItems(1)})
	mock.caps.maxContent = 10
	d.Register(mock)

	if _, err := d.Generate(context.Background(), "mock", testRequest()); err == nil {
		t.Error("oversized content accepted, want error")
	}
}

func TestDispatcherContentLengthCountsRunes(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	mock := NewMockProvider(MockResult{Items: mcqItems(1)})
	mock.caps.maxContent = 10
	d.Register(mock)

	// 8 runes but 24 bytes: within the limit when measured in runes.
	req := testRequest()
	req.Content = "光合作用は植物だ"
	if _, err := d.Generate(context.Background(), "mock", req); err != nil {
		t.Errorf("multibyte content under the rune limit rejected: %v", err)
	}

	req.Content = "光合作用は植物の過程である"
	if _, err := d.Generate(context.Background(), "mock", req); err == nil {
		t.Error("content over the rune limit accepted, want error")
	}
}

func TestDispatcherAvailability(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	avail := d.Availability()
	// Without API keys only the mock backend is usable.
	if !avail["mock"] {
		t.Error("mock should be available")
	}
	for _, name := range []string{"anthropic", "openai", "gemini", "deepseek"} {
		if avail[name] {
			t.Errorf("%s reported available without credentials", name)
		}
	}
}

func TestDispatcherNames(t *testing.T) {
	d, err := NewDispatcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	names := d.Names()
	want := []string{"anthropic", "deepseek", "gemini", "mock", "openai"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
