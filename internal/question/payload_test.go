package question

import (
	"encoding/json"
	"testing"
)

func TestParsePayloadMCQ(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"options":{"a":"Paris","b":"Lyon"},"correct_answer":"a"}`,
		},
		{
			name: "with explanation",
			raw:  `{"options":{"a":"Paris","b":"Lyon"},"correct_answer":"b","explanation":"Lyon is not the capital"}`,
		},
		{
			name:    "single option",
			raw:     `{"options":{"a":"Paris"},"correct_answer":"a"}`,
			wantErr: true,
		},
		{
			name:    "correct answer not an option",
			raw:     `{"options":{"a":"Paris","b":"Lyon"},"correct_answer":"c"}`,
			wantErr: true,
		},
		{
			name:    "empty option text",
			raw:     `{"options":{"a":"Paris","b":""},"correct_answer":"a"}`,
			wantErr: true,
		},
		{
			name:    "missing options",
			raw:     `{"correct_answer":"a"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `not json at all`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(TypeMCQ, json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got payload %+v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload: %v", err)
			}
			mcq, ok := p.(MCQPayload)
			if !ok {
				t.Fatalf("payload type = %T, want MCQPayload", p)
			}
			if _, ok := mcq.Options[mcq.CorrectAnswer]; !ok {
				t.Errorf("correct answer %q missing from options", mcq.CorrectAnswer)
			}
		})
	}
}

func TestParsePayloadTrueFalse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"true literal", `{"correct_answer":"true"}`, false},
		{"false literal", `{"correct_answer":"false"}`, false},
		{"capitalized", `{"correct_answer":"True"}`, true},
		{"boolean not string", `{"correct_answer":true}`, true},
		{"arbitrary string", `{"correct_answer":"yes"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(TypeTrueFalse, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePayloadFillBlank(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid two blanks",
			raw:  `{"blanks":[{"position":1,"correct_answer":"mitochondria"},{"position":2,"correct_answer":"ribosome","alternatives":["ribosomes"]}]}`,
		},
		{
			name:    "no blanks",
			raw:     `{"blanks":[]}`,
			wantErr: true,
		},
		{
			name:    "zero position",
			raw:     `{"blanks":[{"position":0,"correct_answer":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "blank without answer",
			raw:     `{"blanks":[{"position":1,"correct_answer":""}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(TypeFillBlank, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePayloadShortAnswer(t *testing.T) {
	p, err := ParsePayload(TypeShortAnswer, json.RawMessage(
		`{"correct_answer":"photosynthesis","alternative_answers":["photo-synthesis"],"keywords":["light","energy"],"case_sensitive":false}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	sa := p.(ShortAnswerPayload)
	if sa.CorrectAnswer != "photosynthesis" {
		t.Errorf("correct_answer = %q", sa.CorrectAnswer)
	}
	if len(sa.Keywords) != 2 {
		t.Errorf("keywords = %v, want 2 entries", sa.Keywords)
	}

	if _, err := ParsePayload(TypeShortAnswer, json.RawMessage(`{"correct_answer":""}`)); err == nil {
		t.Error("expected error for empty correct_answer")
	}
}

func TestParsePayloadUnknownType(t *testing.T) {
	if _, err := ParsePayload(Type("essay"), json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestPayloadTypeMismatch(t *testing.T) {
	// A valid true/false body must not pass as an MCQ.
	raw := json.RawMessage(`{"correct_answer":"true"}`)
	if _, err := ParsePayload(TypeMCQ, raw); err == nil {
		t.Error("true_false body accepted as mcq")
	}
}

func TestMarshalPayloadRejectsInvalid(t *testing.T) {
	_, err := MarshalPayload(MCQPayload{
		Options:       map[string]string{"a": "only one"},
		CorrectAnswer: "a",
	})
	if err == nil {
		t.Error("expected error for single-option mcq")
	}

	data, err := MarshalPayload(TrueFalsePayload{CorrectAnswer: "false"})
	if err != nil {
		t.Fatalf("MarshalPayload: %v", err)
	}
	if _, err := ParsePayload(TypeTrueFalse, data); err != nil {
		t.Errorf("marshaled payload failed to parse: %v", err)
	}
}
