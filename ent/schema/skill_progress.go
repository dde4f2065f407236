package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// SkillProgress is a learner's recorded state on one skill node.
type SkillProgress struct {
	ent.Schema
}

func (SkillProgress) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "skill_progress"},
		field.ID("user_id", "node_id"),
	}
}

func (SkillProgress) Mixin() []ent.Mixin {
	return []ent.Mixin{UpdatedAtMixin{}}
}

func (SkillProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("node_id").NotEmpty(),
		field.String("status"),
		field.Time("earned_at").
			Optional().
			Nillable(),
	}
}
