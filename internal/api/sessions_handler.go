package api

import (
	"encoding/json"
	"net/http"

	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

type createSessionRequest struct {
	Name          string `json:"name"`
	Content       string `json:"content"`
	QuestionType  string `json:"question_type"`
	QuestionCount int    `json:"question_count"`
}

type updateSessionRequest struct {
	Name            *string `json:"name"`
	Content         *string `json:"content"`
	QuestionType    *string `json:"question_type"`
	QuestionCount   *int    `json:"question_count"`
	ExpectedVersion int     `json:"expected_version"`
}

type duplicateSessionRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	QuestionIDs []int `json:"question_ids"`
}

type addQuestionRequest struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	Payload    json.RawMessage `json:"payload"`
	Difficulty string          `json:"difficulty"`
	Tags       []string        `json:"tags"`
}

func (h *handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"
		sessions, err := h.sessions.List(r.Context(), actor, includeDeleted)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]sessionResponse, len(sessions))
		for i, s := range sessions {
			out[i] = sessionDTO(s)
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": out})

	case http.MethodPost:
		var req createSessionRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		sess, err := h.sessions.Create(r.Context(), actor, store.SessionData{
			Name:          req.Name,
			Content:       req.Content,
			QuestionType:  question.Type(req.QuestionType),
			QuestionCount: req.QuestionCount,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionDTO(sess))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-ID header is required")
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/v1/sessions/")
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}

	switch sub {
	case "":
		h.handleSession(w, r, actor, id)
	case "questions":
		h.handleSessionQuestions(w, r, actor, id)
	case "duplicate":
		h.handleSessionDuplicate(w, r, actor, id)
	case "reorder":
		h.handleSessionReorder(w, r, actor, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "")
	}
}

func (h *handler) handleSession(w http.ResponseWriter, r *http.Request, actor question.Actor, id int) {
	switch r.Method {
	case http.MethodGet:
		sess, err := h.sessions.Get(r.Context(), actor, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionDTO(sess))

	case http.MethodPatch:
		var req updateSessionRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		patch := store.SessionPatch{
			Name:            req.Name,
			Content:         req.Content,
			QuestionCount:   req.QuestionCount,
			ExpectedVersion: req.ExpectedVersion,
		}
		if req.QuestionType != nil {
			qt := question.Type(*req.QuestionType)
			if !qt.Valid() {
				writeError(w, http.StatusBadRequest, "invalid_request", "invalid question_type")
				return
			}
			patch.QuestionType = &qt
		}
		sess, err := h.sessions.Update(r.Context(), actor, id, patch)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionDTO(sess))

	case http.MethodDelete:
		if err := h.sessions.Delete(r.Context(), actor, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleSessionQuestions(w http.ResponseWriter, r *http.Request, actor question.Actor, id int) {
	switch r.Method {
	case http.MethodGet:
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"
		qs, err := h.questions.BySession(r.Context(), actor, id, includeDeleted)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questionDTOs(qs)})

	case http.MethodPost:
		var req addQuestionRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		qt := question.Type(req.Type)
		if !qt.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid question type")
			return
		}
		q, err := h.questions.Create(r.Context(), actor, id, store.QuestionData{
			Type:       qt,
			Text:       req.Text,
			Payload:    req.Payload,
			Source:     question.SourceManual,
			Difficulty: question.Difficulty(req.Difficulty),
			Tags:       req.Tags,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, questionDTO(*q))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleSessionDuplicate(w http.ResponseWriter, r *http.Request, actor question.Actor, id int) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req duplicateSessionRequest
	if r.ContentLength > 0 {
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
	}
	dup, err := h.sessions.Duplicate(r.Context(), actor, id, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionDTO(dup))
}

func (h *handler) handleSessionReorder(w http.ResponseWriter, r *http.Request, actor question.Actor, id int) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req reorderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(req.QuestionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "question_ids is required")
		return
	}
	if err := h.questions.Reorder(r.Context(), actor, id, req.QuestionIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
