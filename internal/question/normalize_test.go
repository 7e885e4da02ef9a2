package question

import (
	"encoding/json"
	"testing"
)

func validMCQRaw(text string, confidence float64) Raw {
	return Raw{
		Text:       text,
		Payload:    json.RawMessage(`{"options":{"a":"1789","b":"1815"},"correct_answer":"a"}`),
		Confidence: confidence,
	}
}

func TestNormalizeKeepsValidItems(t *testing.T) {
	items := []Raw{
		validMCQRaw("When did the revolution start?", 0.9),
		validMCQRaw("When did it end?", 0.4),
	}

	out := Normalize(items, TypeMCQ, DifficultyEasy)
	if len(out) != 2 {
		t.Fatalf("normalized %d items, want 2", len(out))
	}
	for _, q := range out {
		if q.Type != TypeMCQ {
			t.Errorf("type = %s, want mcq", q.Type)
		}
		if q.Source != SourceAI {
			t.Errorf("source = %s, want ai", q.Source)
		}
		if q.Difficulty != DifficultyEasy {
			t.Errorf("difficulty = %s, want easy", q.Difficulty)
		}
		if q.Status != StatusActive {
			t.Errorf("status = %s, want active", q.Status)
		}
		if q.Confidence == nil {
			t.Error("confidence not set")
		}
	}
}

func TestNormalizeDropsInvalidItems(t *testing.T) {
	items := []Raw{
		validMCQRaw("Good question?", 0.8),
		{Text: "", Payload: json.RawMessage(`{"options":{"a":"x","b":"y"},"correct_answer":"a"}`)},
		{Text: "Bad payload?", Payload: json.RawMessage(`{"correct_answer":"true"}`)},
		{Text: "Broken json?", Payload: json.RawMessage(`{{`)},
		validMCQRaw("Another good one?", 0.7),
	}

	out := Normalize(items, TypeMCQ, DifficultyMedium)
	if len(out) != 2 {
		t.Fatalf("normalized %d items, want 2 (invalid items dropped)", len(out))
	}
	if out[0].Text != "Good question?" || out[1].Text != "Another good one?" {
		t.Errorf("wrong items kept: %q, %q", out[0].Text, out[1].Text)
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	items := []Raw{
		validMCQRaw("over?", 1.7),
		validMCQRaw("under?", -0.3),
		validMCQRaw("in range?", 0.55),
	}

	out := Normalize(items, TypeMCQ, DifficultyMedium)
	if len(out) != 3 {
		t.Fatalf("normalized %d items, want 3", len(out))
	}
	want := []float64{1, 0, 0.55}
	for i, q := range out {
		if *q.Confidence != want[i] {
			t.Errorf("confidence[%d] = %v, want %v", i, *q.Confidence, want[i])
		}
	}
}

func TestNormalizeDefaultsDifficulty(t *testing.T) {
	out := Normalize([]Raw{validMCQRaw("q?", 0.5)}, TypeMCQ, Difficulty("extreme"))
	if len(out) != 1 {
		t.Fatalf("normalized %d items, want 1", len(out))
	}
	if out[0].Difficulty != DifficultyMedium {
		t.Errorf("difficulty = %s, want medium fallback", out[0].Difficulty)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	out := Normalize(nil, TypeMCQ, DifficultyMedium)
	if len(out) != 0 {
		t.Errorf("normalized %d items from nil input, want 0", len(out))
	}
}
