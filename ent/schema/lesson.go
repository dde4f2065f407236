package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Lesson is a single unit of content inside a module.
type Lesson struct {
	ent.Schema
}

func (Lesson) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "lessons"},
	}
}

func (Lesson) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("module_id").NotEmpty(),
		field.String("title"),
		field.Int("position"),
		field.Int64("xp_reward"),
	}
}

func (Lesson) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("module_id"),
	}
}
