package api

import (
	"encoding/json"
	"net/http"

	"github.com/abiraja/quizforge/internal/generate"
	"github.com/abiraja/quizforge/internal/question"
)

type generateRequest struct {
	Content        string `json:"content"`
	QuestionType   string `json:"question_type"`
	Count          int    `json:"count"`
	Difficulty     string `json:"difficulty"`
	Provider       string `json:"provider"`
	SessionID      int    `json:"session_id"`
	SessionVersion int    `json:"session_version"`
	SessionName    string `json:"session_name"`
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}

	var req generateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	res, err := h.service.Generate(r.Context(), generate.Request{
		Actor:          actor,
		Content:        req.Content,
		Type:           question.Type(req.QuestionType),
		Count:          req.Count,
		Difficulty:     question.Difficulty(req.Difficulty),
		Provider:       req.Provider,
		SessionID:      req.SessionID,
		SessionVersion: req.SessionVersion,
		SessionName:    req.SessionName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if req.SessionID != 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, generateResponse{
		SessionID:      res.SessionID,
		Provider:       res.Provider,
		Model:          res.Model,
		CountRequested: res.CountRequested,
		CountReturned:  res.CountReturned,
		Questions:      questionDTOs(res.Questions),
	})
}
