package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SkillNode is a node of a discipline's skill tree.
type SkillNode struct {
	ent.Schema
}

func (SkillNode) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "skill_nodes"},
	}
}

func (SkillNode) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("discipline").NotEmpty(),
		field.String("title"),
		field.Int("tier").
			Comment("bronze=1 through diamond=5"),
		field.Int64("xp_required"),
		field.String("lesson_id").
			Comment("Linked lesson, empty when none"),
		field.Bool("milestone"),
		field.Int("position"),
	}
}

func (SkillNode) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("discipline"),
	}
}
