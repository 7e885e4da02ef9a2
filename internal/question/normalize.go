package question

import "encoding/json"

// Raw is one candidate item as returned by a provider, before
// normalization. The payload shape is not yet trusted.
type Raw struct {
	Text       string          `json:"question_text"`
	Payload    json.RawMessage `json:"payload"`
	Confidence float64         `json:"confidence"`
}

// Normalize converts raw provider output into canonical questions.
// Each candidate is validated independently against the declared type's
// payload schema; candidates that fail are dropped rather than failing
// the batch, so a partially successful generation yields fewer
// questions instead of none. The caller detects the shortfall by
// comparing the returned length against the requested count.
func Normalize(items []Raw, typ Type, difficulty Difficulty) []Question {
	if !difficulty.Valid() {
		difficulty = DifficultyMedium
	}

	out := make([]Question, 0, len(items))
	for _, item := range items {
		if item.Text == "" {
			continue
		}
		if _, err := ParsePayload(typ, item.Payload); err != nil {
			continue
		}
		conf := clampConfidence(item.Confidence)
		out = append(out, Question{
			Type:       typ,
			Text:       item.Text,
			Payload:    item.Payload,
			Source:     SourceAI,
			Confidence: &conf,
			Difficulty: difficulty,
			Status:     StatusActive,
		})
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
