package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Session is a named batch grouping one source content blob with its
// generation parameters and the questions generated from it.
type Session struct {
	ent.Schema
}

func (Session) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Session) Fields() []ent.Field {
	return []ent.Field{
		field.String("owner_id").
			NotEmpty().
			Comment("Identity of the user who owns this session"),
		field.String("name").
			NotEmpty(),
		field.Text("content").
			Comment("Source text questions are generated from"),
		field.String("content_hash").
			Comment("SHA-256 hex of content; recomputed on every content change"),
		field.Enum("question_type").
			Values("mcq", "short_answer", "fill_blank", "true_false"),
		field.Int("question_count").
			Default(5).
			Comment("Requested question count for the last generation"),
		field.String("provider").
			Default("").
			Comment("Provider name used for the last generation, empty if manual"),
		field.Enum("status").
			Values("active", "deleted").
			Default("active"),
		field.Int("version").
			Default(1).
			Comment("Optimistic concurrency counter, bumped on every mutation"),
	}
}

func (Session) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("owner_id"),
		index.Fields("status"),
		index.Fields("owner_id", "status"),
	}
}
