package store

import (
	"context"
	"testing"
)

func appendTestEvent(t *testing.T, s *Store, data LLMRequestEventData) {
	t.Helper()
	if err := s.Events().AppendLLMRequest(context.Background(), data); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestLLMRequestAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "req-1", Provider: "openai", Model: "gpt-4o-mini",
		Purpose: "question-gen", InputTokens: 100, OutputTokens: 200,
		LatencyMs: 1500, Success: true, Request: "prompt", Response: `{"questions":[]}`,
	})
	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "req-2", Provider: "anthropic", Model: "claude-haiku-4-5",
		Purpose: "regenerate", InputTokens: 50, OutputTokens: 80,
		LatencyMs: 900, Success: true,
	})
	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "req-3", Provider: "openai", Model: "gpt-4o-mini",
		Purpose: "question-gen", Success: false, ErrorMessage: "rate limited",
	})

	all, err := s.Events().LLMRequests(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].RequestID != "req-3" {
		t.Errorf("first event = %s, want req-3", all[0].RequestID)
	}
	if all[0].Sequence <= all[1].Sequence {
		t.Error("events not in descending sequence order")
	}

	byPurpose, err := s.Events().LLMRequests(ctx, QueryOpts{Purpose: "regenerate"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(byPurpose) != 1 || byPurpose[0].RequestID != "req-2" {
		t.Errorf("purpose filter returned %v", byPurpose)
	}

	failed, err := s.Events().LLMRequests(ctx, QueryOpts{FailedOnly: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "rate limited" {
		t.Errorf("failed filter returned %v", failed)
	}

	limited, err := s.Events().LLMRequests(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}

func TestLLMRequestByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "req-abc", Provider: "openai", Model: "gpt-4o-mini",
		Purpose: "question-gen", Success: true, Request: "the prompt", Response: "the response",
	})

	e, err := s.Events().LLMRequestByID(ctx, "req-abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Request != "the prompt" || e.Response != "the response" {
		t.Errorf("bodies not round-tripped: %q / %q", e.Request, e.Response)
	}

	if _, err := s.Events().LLMRequestByID(ctx, "req-missing"); err == nil {
		t.Error("expected error for missing request ID")
	}
}

func TestLLMUsageAggregation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "u-1", Provider: "openai", Model: "gpt-4o-mini",
		Purpose: "question-gen", InputTokens: 100, OutputTokens: 200, Success: true,
	})
	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "u-2", Provider: "openai", Model: "gpt-4o-mini",
		Purpose: "question-gen", InputTokens: 300, OutputTokens: 400, Success: true,
	})
	appendTestEvent(t, s, LLMRequestEventData{
		RequestID: "u-3", Provider: "anthropic", Model: "claude-haiku-4-5",
		Purpose: "regenerate", InputTokens: 10, OutputTokens: 20, Success: true,
	})

	byPurpose, err := s.Events().UsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	// Sorted by key: question-gen, regenerate.
	qg := byPurpose[0]
	if qg.Key != "question-gen" || qg.Requests != 2 || qg.InputTokens != 400 || qg.OutputTokens != 600 {
		t.Errorf("question-gen stat = %+v", qg)
	}

	byModel, err := s.Events().UsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("models = %d, want 2", len(byModel))
	}
	if byModel[0].Key != "claude-haiku-4-5" || byModel[0].InputTokens != 10 {
		t.Errorf("model stat = %+v", byModel[0])
	}
}
