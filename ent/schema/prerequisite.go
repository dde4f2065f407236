package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Prerequisite is one edge of a module or skill graph.
type Prerequisite struct {
	ent.Schema
}

func (Prerequisite) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "prerequisites"},
		field.ID("kind", "node_id", "prerequisite_id"),
	}
}

func (Prerequisite) Fields() []ent.Field {
	return []ent.Field{
		field.String("kind").
			Comment("module or skill"),
		field.String("node_id"),
		field.String("prerequisite_id"),
		field.Int("position"),
	}
}
