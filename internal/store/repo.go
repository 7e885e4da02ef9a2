package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abiraja/quizforge/internal/question"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when the acting user does not own the
	// record and is not elevated.
	ErrNotOwner = errors.New("not the owner")

	// ErrVersionConflict is returned when an update carries a stale
	// session version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidReorder is returned when a reorder does not name the
	// session's active questions exactly once each.
	ErrInvalidReorder = errors.New("invalid reorder")
)

// Session groups one source content blob with its generation parameters
// and the questions generated from it.
type Session struct {
	ID            int
	OwnerID       string
	Name          string
	Content       string
	ContentHash   string
	QuestionType  question.Type
	QuestionCount int
	Provider      string
	Status        question.Status
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionData carries the fields for creating a session. The owner is
// always the acting user; the content hash is computed on write.
type SessionData struct {
	Name          string
	Content       string
	QuestionType  question.Type
	QuestionCount int
	Provider      string
}

// SessionPatch carries the mutable session fields. Nil pointers leave
// the field unchanged. ExpectedVersion, when non-zero, must match the
// stored version or the update fails with ErrVersionConflict.
type SessionPatch struct {
	Name            *string
	Content         *string
	QuestionType    *question.Type
	QuestionCount   *int
	ExpectedVersion int
}

// QuestionData carries the fields for creating a question. Position and
// creator are assigned by the repository.
type QuestionData struct {
	Type       question.Type
	Text       string
	Payload    json.RawMessage
	Source     question.Source
	Confidence *float64
	Difficulty question.Difficulty
	Tags       []string
}

// QuestionPatch carries the mutable question fields. Nil leaves the
// field unchanged; type, source, and confidence are immutable.
type QuestionPatch struct {
	Text       *string
	Payload    json.RawMessage
	Difficulty *question.Difficulty
	Tags       []string
}

// SessionRepo manages sessions and the transactional operations that
// span a session and its questions.
type SessionRepo interface {
	// Create stores a new session owned by the actor.
	Create(ctx context.Context, actor question.Actor, data SessionData) (*Session, error)

	// Get returns a session by ID. Deleted sessions are still
	// returned; callers filter on Status when they need active only.
	Get(ctx context.Context, actor question.Actor, id int) (*Session, error)

	// List returns the actor's sessions, newest first. Elevated
	// actors see every owner's sessions.
	List(ctx context.Context, actor question.Actor, includeDeleted bool) ([]*Session, error)

	// Update applies a patch. Changing content recomputes the hash.
	// Every successful update bumps the version.
	Update(ctx context.Context, actor question.Actor, id int, patch SessionPatch) (*Session, error)

	// Delete soft-deletes the session and all its questions in one
	// transaction.
	Delete(ctx context.Context, actor question.Actor, id int) error

	// Duplicate deep-copies a session and its active questions under
	// a new name, with ordering reset to 1..n.
	Duplicate(ctx context.Context, actor question.Actor, id int, newName string) (*Session, error)

	// CreateWithQuestions creates a session and its questions
	// atomically. Nothing is persisted if any question is invalid.
	CreateWithQuestions(ctx context.Context, actor question.Actor, data SessionData, items []QuestionData) (*Session, []question.Question, error)

	// ReplaceQuestions soft-deletes the session's active questions
	// and inserts the new set in one transaction, updating the
	// session's generation parameters and bumping its version.
	// expectedVersion guards against concurrent regeneration; zero
	// skips the check.
	ReplaceQuestions(ctx context.Context, actor question.Actor, sessionID, expectedVersion int, provider string, items []QuestionData) ([]question.Question, error)
}

// QuestionRepo manages individual questions within a session.
type QuestionRepo interface {
	// Create appends a question to a session at the next position.
	Create(ctx context.Context, actor question.Actor, sessionID int, data QuestionData) (*question.Question, error)

	// CreateBatch appends questions atomically. Either all items are
	// stored or none are.
	CreateBatch(ctx context.Context, actor question.Actor, sessionID int, items []QuestionData) ([]question.Question, error)

	// Get returns a question by ID.
	Get(ctx context.Context, actor question.Actor, id int) (*question.Question, error)

	// BySession returns a session's questions ordered by position.
	// Deleted questions are excluded unless includeDeleted is set.
	BySession(ctx context.Context, actor question.Actor, sessionID int, includeDeleted bool) ([]question.Question, error)

	// Update applies a patch. A new payload is validated against the
	// question's type schema before the write.
	Update(ctx context.Context, actor question.Actor, id int, patch QuestionPatch) (*question.Question, error)

	// Delete soft-deletes a question. Its position is never reused.
	Delete(ctx context.Context, actor question.Actor, id int) error

	// Reorder rewrites positions to match ids, which must be exactly
	// the session's active question IDs in the desired order.
	Reorder(ctx context.Context, actor question.Actor, sessionID int, ids []int) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit      int    // max results (0 = unlimited)
	After      int64  // sequence > After
	Provider   string // filter by provider name
	Purpose    string // filter by purpose label
	FailedOnly bool   // only unsuccessful calls
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RequestID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	Request      string
	Response     string
}

// LLMRequestEvent is a stored audit record of one provider API call.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageStat aggregates token usage over one grouping key (a purpose
// label or a model ID).
type UsageStat struct {
	Key          string
	Requests     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the audit trail.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMRequests returns events in descending sequence order.
	LLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// LLMRequestByID returns the event with the given request ID.
	LLMRequestByID(ctx context.Context, requestID string) (*LLMRequestEvent, error)

	// UsageByPurpose aggregates token usage per purpose label.
	UsageByPurpose(ctx context.Context) ([]UsageStat, error)

	// UsageByModel aggregates token usage per model ID.
	UsageByModel(ctx context.Context) ([]UsageStat, error)
}
