package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchemaDefs holds the JSON Schema definition for each payload
// variant. These are the authoritative shapes from the data model; the
// provider layer embeds them into its structured-output request schema.
var payloadSchemaDefs = map[Type]map[string]any{
	TypeMCQ: {
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type":                 "object",
				"minProperties":        2,
				"additionalProperties": map[string]any{"type": "string"},
				"description":          "Mapping of option key to option text, at least 2 entries",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The key of the correct option",
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"options", "correct_answer"},
	},
	TypeShortAnswer: {
		"type": "object",
		"properties": map[string]any{
			"correct_answer": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"alternative_answers": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"case_sensitive": map[string]any{"type": "boolean"},
		},
		"required": []any{"correct_answer"},
	},
	TypeFillBlank: {
		"type": "object",
		"properties": map[string]any{
			"blanks": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"position":       map[string]any{"type": "integer", "minimum": 1},
						"correct_answer": map[string]any{"type": "string", "minLength": 1},
						"alternatives": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"position", "correct_answer"},
				},
			},
			"case_sensitive": map[string]any{"type": "boolean"},
		},
		"required": []any{"blanks"},
	},
	TypeTrueFalse: {
		"type": "object",
		"properties": map[string]any{
			"correct_answer": map[string]any{
				"type": "string",
				"enum": []any{"true", "false"},
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"correct_answer"},
	},
}

// PayloadSchemaDef returns the JSON Schema definition map for the given
// type's payload, or nil for an unknown type.
func PayloadSchemaDef(typ Type) map[string]any {
	return payloadSchemaDefs[typ]
}

// payloadSchemaCache caches compiled payload schemas by type.
var payloadSchemaCache sync.Map // map[Type]*jsonschema.Schema

// validatePayloadSchema validates raw payload JSON against the schema
// for the given type.
func validatePayloadSchema(typ Type, raw json.RawMessage) error {
	def, ok := payloadSchemaDefs[typ]
	if !ok {
		return fmt.Errorf("no payload schema for type %q", typ)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid payload JSON: %w", err)
	}

	compiled, err := compiledPayloadSchema(typ, def)
	if err != nil {
		return fmt.Errorf("compile %s payload schema: %w", typ, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%s payload schema validation failed: %w", typ, err)
	}
	return nil
}

func compiledPayloadSchema(typ Type, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := payloadSchemaCache.Load(typ); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not Go maps
	// holding arbitrary types. Round-trip through JSON to normalize.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://payload-%s.json", typ)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	payloadSchemaCache.Store(typ, compiled)
	return compiled, nil
}
