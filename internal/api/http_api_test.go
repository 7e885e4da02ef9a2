package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/abiraja/quizforge/internal/generate"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *provider.MockProvider) {
	t.Helper()

	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := provider.DefaultConfig()
	cfg.Default = "mock"
	dispatcher, err := provider.NewDispatcher(cfg, st.Events())
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	mock := provider.NewMockProvider()
	dispatcher.Register(mock)

	srv := httptest.NewServer(NewHandler(Config{
		Service:    generate.NewService(dispatcher, st.Sessions()),
		Dispatcher: dispatcher,
		Sessions:   st.Sessions(),
		Questions:  st.Questions(),
		Events:     st.Events(),
	}))
	t.Cleanup(srv.Close)
	return srv, mock
}

func doJSON(t *testing.T, method, url, actorID string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func testContent() string {
	return strings.Repeat("The mitochondrion is the powerhouse of the cell. ", 3)
}

func mcqRaw() question.Raw {
	return question.Raw{
		Text:       "What is the powerhouse of the cell?",
		Payload:    json.RawMessage(`{"options":{"a":"mitochondrion","b":"nucleus"},"correct_answer":"a"}`),
		Confidence: 0.9,
	}
}

func TestHTTP_MissingActor(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/v1/generate", "/v1/sessions"} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+path, "", map[string]any{})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, resp.StatusCode)
		}
		var parsed errorResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if parsed.Error != "missing_actor" {
			t.Errorf("%s: error = %q, want missing_actor", path, parsed.Error)
		}
	}
}

func TestHTTP_GenerateCreatesSession(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddResult(provider.MockResult{
		Items: []question.Raw{mcqRaw(), mcqRaw()},
		Usage: provider.Usage{InputTokens: 50, OutputTokens: 150},
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/generate", "teacher-1", map[string]any{
		"content":       testContent(),
		"question_type": "mcq",
		"count":         2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if parsed.SessionID == 0 {
		t.Error("session_id not set")
	}
	if parsed.CountReturned != 2 || len(parsed.Questions) != 2 {
		t.Errorf("count_returned = %d, questions = %d, want 2", parsed.CountReturned, len(parsed.Questions))
	}
	if parsed.Provider != "mock" {
		t.Errorf("provider = %q, want mock", parsed.Provider)
	}
}

func TestHTTP_GenerateInvalidContent(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/generate", "teacher-1", map[string]any{
		"content":       "too short",
		"question_type": "mcq",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if parsed.Error != "invalid_content" {
		t.Errorf("error = %q, want invalid_content", parsed.Error)
	}
}

func TestHTTP_SessionOwnership(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", "alice", map[string]any{
		"name":          "Alice's quiz",
		"content":       testContent(),
		"question_type": "mcq",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", resp.StatusCode, body)
	}
	var created sessionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}

	url := srv.URL + "/v1/sessions/" + strconv.Itoa(created.ID)

	resp, _ = doJSON(t, http.MethodGet, url, "bob", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("bob get status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, url, "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("alice get status = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/sessions/99999", "alice", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing get status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, url, "alice", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestHTTP_ReorderValidation(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddResult(provider.MockResult{Items: []question.Raw{mcqRaw(), mcqRaw()}})

	_, body := doJSON(t, http.MethodPost, srv.URL+"/v1/generate", "alice", map[string]any{
		"content":       testContent(),
		"question_type": "mcq",
		"count":         2,
	})
	var created generateResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}

	resp, body := doJSON(t, http.MethodPut,
		srv.URL+"/v1/sessions/"+strconv.Itoa(created.SessionID)+"/reorder", "alice",
		map[string]any{"question_ids": []int{created.Questions[0].ID}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPut,
		srv.URL+"/v1/sessions/"+strconv.Itoa(created.SessionID)+"/reorder", "alice",
		map[string]any{"question_ids": []int{created.Questions[1].ID, created.Questions[0].ID}})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("valid reorder status = %d, want 204", resp.StatusCode)
	}
}

func TestHTTP_ProvidersEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/providers", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var parsed providersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if parsed.Default != "mock" {
		t.Errorf("default = %q, want mock", parsed.Default)
	}
	if !parsed.Availability["mock"] {
		t.Error("mock should be available")
	}
}

func TestHTTP_AuditRequiresElevation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/llm/requests", "alice", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-elevated actor", resp.StatusCode)
	}
}
