package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type providersResponse struct {
	Default      string          `json:"default"`
	Availability map[string]bool `json:"availability"`
}

type sessionResponse struct {
	ID            int           `json:"id"`
	OwnerID       string        `json:"owner_id"`
	Name          string        `json:"name"`
	ContentHash   string        `json:"content_hash"`
	QuestionType  question.Type `json:"question_type"`
	QuestionCount int           `json:"question_count"`
	Provider      string        `json:"provider,omitempty"`
	Status        string        `json:"status"`
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type questionResponse struct {
	ID         int             `json:"id"`
	SessionID  int             `json:"session_id"`
	Type       question.Type   `json:"type"`
	Text       string          `json:"text"`
	Payload    json.RawMessage `json:"payload"`
	Source     question.Source `json:"source"`
	Confidence *float64        `json:"confidence,omitempty"`
	Difficulty string          `json:"difficulty"`
	Tags       []string        `json:"tags,omitempty"`
	CreatorID  string          `json:"creator_id"`
	Position   int             `json:"position"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type generateResponse struct {
	SessionID      int                `json:"session_id"`
	Provider       string             `json:"provider"`
	Model          string             `json:"model"`
	CountRequested int                `json:"count_requested"`
	CountReturned  int                `json:"count_returned"`
	Questions      []questionResponse `json:"questions"`
}

func sessionDTO(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		Name:          s.Name,
		ContentHash:   s.ContentHash,
		QuestionType:  s.QuestionType,
		QuestionCount: s.QuestionCount,
		Provider:      s.Provider,
		Status:        string(s.Status),
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func questionDTO(q question.Question) questionResponse {
	return questionResponse{
		ID:         q.ID,
		SessionID:  q.SessionID,
		Type:       q.Type,
		Text:       q.Text,
		Payload:    q.Payload,
		Source:     q.Source,
		Confidence: q.Confidence,
		Difficulty: string(q.Difficulty),
		Tags:       q.Tags,
		CreatorID:  q.CreatorID,
		Position:   q.Position,
		Status:     string(q.Status),
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func questionDTOs(qs []question.Question) []questionResponse {
	out := make([]questionResponse, len(qs))
	for i, q := range qs {
		out[i] = questionDTO(q)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Unrecognized
// errors surface as 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		rateLimited *provider.ErrRateLimit
		unavailable *provider.ErrProviderUnavailable
		timeout     *provider.ErrTimeout
		badResponse *provider.ErrInvalidResponse
	)
	switch {
	case errors.Is(err, content.ErrEmpty),
		errors.Is(err, content.ErrTooShort),
		errors.Is(err, content.ErrTooLong):
		writeError(w, http.StatusBadRequest, "invalid_content", err.Error())
	case errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, provider.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &rateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.As(err, &timeout):
		writeError(w, http.StatusGatewayTimeout, "provider_timeout", err.Error())
	case errors.As(err, &unavailable):
		writeError(w, http.StatusServiceUnavailable, "provider_unavailable", err.Error())
	case errors.As(err, &badResponse):
		writeError(w, http.StatusBadGateway, "invalid_provider_response", err.Error())
	case errors.Is(err, store.ErrInvalidReorder):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, store.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
