package schema

import (
	"encoding/json"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is one generated or manually authored item owned by exactly
// one session. The payload column holds the type-specific structure and
// is validated against the per-type schema before any insert.
type Question struct {
	ent.Schema
}

func (Question) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.Int("session_id"),
		field.Enum("type").
			Values("mcq", "short_answer", "fill_blank", "true_false").
			Immutable(),
		field.Text("text").
			NotEmpty(),
		field.JSON("payload", json.RawMessage{}).
			Comment("Type-specific structure, shape keyed by the type column"),
		field.Enum("source").
			Values("ai", "manual").
			Default("manual").
			Immutable(),
		field.Float("confidence").
			Optional().
			Nillable().
			Comment("Provider confidence 0.0-1.0, only set when source=ai"),
		field.Enum("difficulty").
			Values("easy", "medium", "hard").
			Default("medium"),
		field.JSON("tags", []string{}).
			Optional(),
		field.String("creator_id").
			NotEmpty(),
		field.Int("position").
			Comment("Dense per-session ordering; next = max existing + 1, never reused"),
		field.Enum("status").
			Values("active", "deleted").
			Default("active"),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("session_id", "status"),
		index.Fields("session_id", "position"),
	}
}
