// Package api exposes the generation pipeline and the session store
// over HTTP. The caller identity rides the X-Actor-ID header; plugin
// hosts that have their own auth put a trusted proxy in front.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/abiraja/quizforge/internal/generate"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

// Config wires dependencies for the HTTP handler.
type Config struct {
	Service    *generate.Service
	Dispatcher *provider.Dispatcher
	Sessions   store.SessionRepo
	Questions  store.QuestionRepo
	Events     store.EventRepo
}

// NewHandler builds the HTTP handler for the question service API.
func NewHandler(cfg Config) http.Handler {
	h := &handler{
		service:    cfg.Service,
		dispatcher: cfg.Dispatcher,
		sessions:   cfg.Sessions,
		questions:  cfg.Questions,
		events:     cfg.Events,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/v1/generate", h.handleGenerate)
	mux.HandleFunc("/v1/providers", h.handleProviders)
	mux.HandleFunc("/v1/sessions", h.handleSessions)
	mux.HandleFunc("/v1/sessions/", h.handleSessionByID)
	mux.HandleFunc("/v1/questions/", h.handleQuestionByID)
	mux.HandleFunc("/v1/llm/requests", h.handleLLMRequests)
	mux.HandleFunc("/v1/llm/usage", h.handleLLMUsage)
	return mux
}

type handler struct {
	service    *generate.Service
	dispatcher *provider.Dispatcher
	sessions   store.SessionRepo
	questions  store.QuestionRepo
	events     store.EventRepo
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, providersResponse{
		Default:      h.dispatcher.DefaultName(),
		Availability: h.dispatcher.Availability(),
	})
}

// actorFrom reads the caller identity headers. The ID is mandatory:
// every store operation is attributed to an explicit actor.
func actorFrom(r *http.Request) (question.Actor, bool) {
	id := strings.TrimSpace(r.Header.Get("X-Actor-ID"))
	if id == "" {
		return question.Actor{}, false
	}
	return question.Actor{
		ID:       id,
		Elevated: r.Header.Get("X-Actor-Elevated") == "true",
	}, true
}

// pathID parses the trailing numeric segment after prefix, returning
// any sub-resource path that follows it ("questions", "duplicate", ...).
func pathID(path, prefix string) (int, string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, "", false
	}
	idPart, sub, _ := strings.Cut(rest, "/")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, sub, true
}
