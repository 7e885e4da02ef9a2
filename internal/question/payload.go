package question

import (
	"encoding/json"
	"fmt"
)

// Payload is the type-specific structure of a question, modeled as a
// tagged union: one variant struct per question type.
type Payload interface {
	// QuestionType returns the type this payload shape belongs to.
	QuestionType() Type

	// Validate checks the invariants the JSON schema cannot express
	// (e.g. the MCQ correct answer key must exist among the options).
	Validate() error
}

// MCQPayload holds a multiple-choice question body.
type MCQPayload struct {
	// Options maps option key (e.g. "a", "b") to option text. At least
	// two entries are required.
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
}

func (MCQPayload) QuestionType() Type { return TypeMCQ }

func (p MCQPayload) Validate() error {
	if len(p.Options) < 2 {
		return fmt.Errorf("mcq requires at least 2 options, got %d", len(p.Options))
	}
	if _, ok := p.Options[p.CorrectAnswer]; !ok {
		return fmt.Errorf("correct_answer %q is not an option key", p.CorrectAnswer)
	}
	for k, v := range p.Options {
		if v == "" {
			return fmt.Errorf("option %q has empty text", k)
		}
	}
	return nil
}

// ShortAnswerPayload holds a free-text answer question body.
type ShortAnswerPayload struct {
	CorrectAnswer      string   `json:"correct_answer"`
	AlternativeAnswers []string `json:"alternative_answers,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	CaseSensitive      bool     `json:"case_sensitive"`
}

func (ShortAnswerPayload) QuestionType() Type { return TypeShortAnswer }

func (p ShortAnswerPayload) Validate() error {
	if p.CorrectAnswer == "" {
		return fmt.Errorf("short_answer requires a correct_answer")
	}
	return nil
}

// Blank is one gap in a fill-in-the-blank question.
type Blank struct {
	// Position is the 1-based index of the blank within the question text.
	Position      int      `json:"position"`
	CorrectAnswer string   `json:"correct_answer"`
	Alternatives  []string `json:"alternatives,omitempty"`
}

// FillBlankPayload holds a fill-in-the-blank question body.
type FillBlankPayload struct {
	Blanks        []Blank `json:"blanks"`
	CaseSensitive bool    `json:"case_sensitive"`
}

func (FillBlankPayload) QuestionType() Type { return TypeFillBlank }

func (p FillBlankPayload) Validate() error {
	if len(p.Blanks) == 0 {
		return fmt.Errorf("fill_blank requires at least one blank")
	}
	for i, b := range p.Blanks {
		if b.CorrectAnswer == "" {
			return fmt.Errorf("blank %d has no correct_answer", i+1)
		}
		if b.Position < 1 {
			return fmt.Errorf("blank %d has invalid position %d", i+1, b.Position)
		}
	}
	return nil
}

// TrueFalsePayload holds a true/false question body.
type TrueFalsePayload struct {
	// CorrectAnswer is the literal string "true" or "false".
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

func (TrueFalsePayload) QuestionType() Type { return TypeTrueFalse }

func (p TrueFalsePayload) Validate() error {
	if p.CorrectAnswer != "true" && p.CorrectAnswer != "false" {
		return fmt.Errorf("true_false correct_answer must be \"true\" or \"false\", got %q", p.CorrectAnswer)
	}
	return nil
}

// ParsePayload parses raw JSON as the payload variant for the given
// type. The raw bytes are validated against the type's JSON schema and
// the variant's own invariants before being returned.
func ParsePayload(typ Type, raw json.RawMessage) (Payload, error) {
	if err := validatePayloadSchema(typ, raw); err != nil {
		return nil, err
	}

	var p Payload
	switch typ {
	case TypeMCQ:
		p = &MCQPayload{}
	case TypeShortAnswer:
		p = &ShortAnswerPayload{}
	case TypeFillBlank:
		p = &FillBlankPayload{}
	case TypeTrueFalse:
		p = &TrueFalsePayload{}
	default:
		return nil, fmt.Errorf("unknown question type: %q", typ)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse %s payload: %w", typ, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", typ, err)
	}
	return deref(p), nil
}

// MarshalPayload serializes a payload to its canonical JSON form.
func MarshalPayload(p Payload) (json.RawMessage, error) {
	if p == nil {
		return nil, fmt.Errorf("nil payload")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.QuestionType(), err)
	}
	return data, nil
}

// deref returns the value form so callers compare payloads by value.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *MCQPayload:
		return *v
	case *ShortAnswerPayload:
		return *v
	case *FillBlankPayload:
		return *v
	case *TrueFalsePayload:
		return *v
	}
	return p
}
