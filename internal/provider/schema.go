package provider

import (
	"fmt"

	"github.com/abiraja/quizforge/internal/question"
)

// Schema defines the JSON structure a backend must return. It is handed
// to each SDK's native structured-output mechanism and then used to
// validate the response.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "quiz-questions-mcq".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// responseSchema builds the batch response schema for the given
// question type, embedding the canonical payload schema from the data
// model. The count ceiling is enforced after the call (by truncation)
// rather than in the schema, so compiled schemas can be cached per type.
func responseSchema(typ question.Type) *Schema {
	return &Schema{
		Name:        fmt.Sprintf("quiz-questions-%s", typ),
		Description: fmt.Sprintf("A batch of %s assessment questions generated from source content", typ),
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question_text": map[string]any{
								"type":        "string",
								"minLength":   1,
								"description": "The question prompt shown to the learner",
							},
							"confidence": map[string]any{
								"type":        "number",
								"minimum":     0,
								"maximum":     1,
								"description": "How well the source content supports this question",
							},
							"payload": question.PayloadSchemaDef(typ),
						},
						"required": []any{"question_text", "confidence", "payload"},
					},
				},
			},
			"required":             []any{"questions"},
			"additionalProperties": false,
		},
	}
}
