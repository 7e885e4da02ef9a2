package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent records every provider API call for cost tracking and
// debugging. Rows are append-only.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("request_id").
			NotEmpty().
			Comment("UUID assigned per dispatch, correlates retries of one call"),
		field.String("provider").
			Comment("Provider name: anthropic, openai, gemini, deepseek"),
		field.String("model").
			Comment("Actual model ID that served the request"),
		field.String("purpose").
			Comment("Consumer-provided label: question-gen, regenerate, probe"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default("").
			Comment("Serialized prompt and schema sent to the provider"),
		field.Text("response_body").
			Default("").
			Comment("Raw JSON returned by the provider"),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("request_id"),
		index.Fields("provider"),
		index.Fields("purpose"),
		index.Fields("success"),
	}
}
