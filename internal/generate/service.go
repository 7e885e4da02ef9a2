// Package generate runs the question-generation pipeline: validate the
// source content, dispatch to an AI provider, normalize the raw items,
// and persist the batch atomically.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

// MaxBatch bounds how many questions one generation call may request.
const MaxBatch = 10

// Request carries one generation call through the pipeline.
type Request struct {
	Actor      question.Actor
	Content    string
	Type       question.Type
	Count      int
	Difficulty question.Difficulty

	// SessionID, when non-zero, regenerates into an existing session
	// instead of creating a new one. SessionVersion guards against a
	// concurrent regenerate of the same session (0 skips the check).
	SessionID      int
	SessionVersion int

	SessionName string
	Provider    string
}

// Result reports what a generation call produced. CountReturned can be
// lower than CountRequested when the provider returned fewer usable
// items; the caller decides whether to regenerate.
type Result struct {
	SessionID      int
	Provider       string
	Model          string
	Questions      []question.Question
	CountRequested int
	CountReturned  int
}

// Service wires the pipeline stages together.
type Service struct {
	dispatcher *provider.Dispatcher
	sessions   store.SessionRepo
}

func NewService(d *provider.Dispatcher, sessions store.SessionRepo) *Service {
	return &Service{dispatcher: d, sessions: sessions}
}

// Generate runs the full pipeline. Nothing is persisted unless the
// provider call succeeds: a failed dispatch leaves the store untouched.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := s.prepare(ctx, &req); err != nil {
		return nil, err
	}

	p, err := s.dispatcher.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	purpose := "question-gen"
	if req.SessionID != 0 {
		purpose = "regenerate"
	}
	ctx = provider.WithPurpose(ctx, purpose)

	res, err := s.dispatcher.Generate(ctx, p.Name(), provider.Request{
		Content:    req.Content,
		Type:       req.Type,
		Count:      req.Count,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		return nil, err
	}

	// Normalization is best-effort: malformed items are dropped, the
	// valid remainder is kept.
	normalized := question.Normalize(res.Items, req.Type, req.Difficulty)
	items := make([]store.QuestionData, len(normalized))
	for i, q := range normalized {
		items[i] = store.QuestionData{
			Type:       q.Type,
			Text:       q.Text,
			Payload:    q.Payload,
			Source:     q.Source,
			Confidence: q.Confidence,
			Difficulty: q.Difficulty,
		}
	}

	result := &Result{
		Provider:       p.Name(),
		Model:          res.Model,
		CountRequested: req.Count,
		CountReturned:  len(items),
	}

	if req.SessionID != 0 {
		qs, err := s.sessions.ReplaceQuestions(ctx, req.Actor, req.SessionID, req.SessionVersion, p.Name(), items)
		if err != nil {
			return nil, err
		}
		result.SessionID = req.SessionID
		result.Questions = qs
		return result, nil
	}

	sess, qs, err := s.sessions.CreateWithQuestions(ctx, req.Actor, store.SessionData{
		Name:          req.SessionName,
		Content:       req.Content,
		QuestionType:  req.Type,
		QuestionCount: req.Count,
		Provider:      p.Name(),
	}, items)
	if err != nil {
		return nil, err
	}
	result.SessionID = sess.ID
	result.Questions = qs
	return result, nil
}

// prepare validates the request and fills defaults, loading the target
// session's parameters for a regenerate with no overrides.
func (s *Service) prepare(ctx context.Context, req *Request) error {
	if req.SessionID != 0 && req.Content == "" {
		sess, err := s.sessions.Get(ctx, req.Actor, req.SessionID)
		if err != nil {
			return err
		}
		req.Content = sess.Content
		if req.Type == "" {
			req.Type = sess.QuestionType
		}
		if req.Count == 0 {
			req.Count = sess.QuestionCount
		}
	}

	if err := content.Validate(req.Content); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return fmt.Errorf("invalid question type %q", req.Type)
	}
	if req.Count == 0 {
		req.Count = 5
	}
	if req.Count < 1 || req.Count > MaxBatch {
		return fmt.Errorf("count must be between 1 and %d, got %d", MaxBatch, req.Count)
	}
	if req.Difficulty == "" {
		req.Difficulty = question.DifficultyMedium
	}
	if !req.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", req.Difficulty)
	}
	if req.SessionName == "" {
		req.SessionName = "Generated " + time.Now().Format("2006-01-02 15:04")
	}
	return nil
}
