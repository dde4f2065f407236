package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Module is an authored learning path of one discipline.
type Module struct {
	ent.Schema
}

func (Module) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "modules"},
	}
}

func (Module) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("discipline").NotEmpty(),
		field.String("title"),
		field.Int("position").
			Comment("Authored order within the catalog"),
	}
}

func (Module) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("discipline"),
	}
}
