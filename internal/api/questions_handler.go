package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

type updateQuestionRequest struct {
	Text       *string         `json:"text"`
	Payload    json.RawMessage `json:"payload"`
	Difficulty *string         `json:"difficulty"`
	Tags       []string        `json:"tags"`
}

func (h *handler) handleQuestionByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/v1/questions/")
	if !ok || sub != "" {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		q, err := h.questions.Get(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questionDTO(*q))

	case http.MethodPatch:
		var req updateQuestionRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		patch := store.QuestionPatch{
			Text:    req.Text,
			Payload: req.Payload,
			Tags:    req.Tags,
		}
		if req.Difficulty != nil {
			d := question.Difficulty(*req.Difficulty)
			if !d.Valid() {
				writeError(w, http.StatusBadRequest, "invalid_request", "invalid difficulty")
				return
			}
			patch.Difficulty = &d
		}
		q, err := h.questions.Update(r.Context(), actor, id, patch)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questionDTO(*q))

	case http.MethodDelete:
		if err := h.questions.Delete(r.Context(), actor, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleLLMRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}
	// The audit trail has no per-user rows; only elevated actors see it.
	if !actor.Elevated {
		writeError(w, http.StatusForbidden, "forbidden", "audit trail requires an elevated actor")
		return
	}

	opts := store.QueryOpts{
		Provider:   r.URL.Query().Get("provider"),
		Purpose:    r.URL.Query().Get("purpose"),
		FailedOnly: r.URL.Query().Get("failed") == "true",
		Limit:      50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	events, err := h.events.LLMRequests(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": eventDTOs(events)})
}

func (h *handler) handleLLMUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}
	if !actor.Elevated {
		writeError(w, http.StatusForbidden, "forbidden", "usage stats require an elevated actor")
		return
	}

	byPurpose, err := h.events.UsageByPurpose(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byModel, err := h.events.UsageByModel(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	models := usageDTOs(byModel)
	for i := range models {
		if c := provider.LookupCost(models[i].Key); c != nil {
			models[i].CostUSD = c.Cost(models[i].InputTokens, models[i].OutputTokens)
		}
	}
	writeJSON(w, http.StatusOK, usageResponse{
		ByPurpose: usageDTOs(byPurpose),
		ByModel:   models,
	})
}

type llmRequestResponse struct {
	RequestID    string `json:"request_id"`
	Sequence     int64  `json:"sequence"`
	Timestamp    string `json:"timestamp"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type usageEntry struct {
	Key          string  `json:"key"`
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
}

type usageResponse struct {
	ByPurpose []usageEntry `json:"by_purpose"`
	ByModel   []usageEntry `json:"by_model"`
}

func eventDTOs(events []store.LLMRequestEvent) []llmRequestResponse {
	out := make([]llmRequestResponse, len(events))
	for i, e := range events {
		out[i] = llmRequestResponse{
			RequestID:    e.RequestID,
			Sequence:     e.Sequence,
			Timestamp:    e.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Provider:     e.Provider,
			Model:        e.Model,
			Purpose:      e.Purpose,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			ErrorMessage: e.ErrorMessage,
		}
	}
	return out
}

func usageDTOs(stats []store.UsageStat) []usageEntry {
	out := make([]usageEntry, len(stats))
	for i, s := range stats {
		out[i] = usageEntry{
			Key:          s.Key,
			Requests:     s.Requests,
			InputTokens:  s.InputTokens,
			OutputTokens: s.OutputTokens,
		}
	}
	return out
}
