package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

// LoggingProvider is a decorator that records every generation call as
// an audit event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) GenerateQuestions(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	res, err := l.inner.GenerateQuestions(ctx, req)

	data := store.LLMRequestEventData{
		RequestID: uuid.NewString(),
		Provider:  l.inner.Name(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		Request:   serializeRequest(req),
	}

	if res != nil {
		data.InputTokens = res.Usage.InputTokens
		data.OutputTokens = res.Usage.OutputTokens
		data.Model = res.Model
		data.Response = serializeItems(res.Items)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation event: %v\n", logErr)
	}

	return res, err
}

func (l *LoggingProvider) Name() string                    { return l.inner.Name() }
func (l *LoggingProvider) ModelID() string                 { return l.inner.ModelID() }
func (l *LoggingProvider) SupportedTypes() []question.Type { return l.inner.SupportedTypes() }
func (l *LoggingProvider) MaxContentLength() int           { return l.inner.MaxContentLength() }
func (l *LoggingProvider) MaxCount() int                   { return l.inner.MaxCount() }
func (l *LoggingProvider) ValidateCredentials() error      { return l.inner.ValidateCredentials() }

// serializeRequest builds a readable representation of the call.
func serializeRequest(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "type=%s count=%d difficulty=%s content_chars=%d\n\n", req.Type, req.Count, req.Difficulty, len(req.Content))
	b.WriteString(buildUserMessage(req))

	return b.String()
}

func serializeItems(items []question.Raw) string {
	data, err := json.Marshal(batchEnvelope{Questions: items})
	if err != nil {
		return ""
	}
	return string(data)
}
