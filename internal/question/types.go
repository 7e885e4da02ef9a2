package question

import (
	"encoding/json"
	"time"
)

// Type identifies the closed set of supported question shapes.
type Type string

const (
	TypeMCQ         Type = "mcq"
	TypeShortAnswer Type = "short_answer"
	TypeFillBlank   Type = "fill_blank"
	TypeTrueFalse   Type = "true_false"
)

// AllTypes returns every supported question type.
func AllTypes() []Type {
	return []Type{TypeMCQ, TypeShortAnswer, TypeFillBlank, TypeTrueFalse}
}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case TypeMCQ, TypeShortAnswer, TypeFillBlank, TypeTrueFalse:
		return true
	}
	return false
}

// Difficulty is the per-question difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Source records question provenance.
type Source string

const (
	SourceAI     Source = "ai"
	SourceManual Source = "manual"
)

// Status is the lifecycle state shared by sessions and questions.
// The only transition is active -> deleted, and it is terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Actor is the caller identity threaded explicitly through every store
// operation. Elevated grants access to sessions the actor does not own;
// the host system decides who gets it.
type Actor struct {
	ID       string
	Elevated bool
}

// Question is the canonical record for one generated or manually
// authored item. Payload holds the type-specific structure as JSON that
// has passed schema validation; ParsePayload turns it back into its
// typed variant.
type Question struct {
	ID         int
	SessionID  int
	Type       Type
	Text       string
	Payload    json.RawMessage
	Source     Source
	Confidence *float64 // only set when Source is ai
	Difficulty Difficulty
	Tags       []string
	CreatorID  string
	Position   int
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
