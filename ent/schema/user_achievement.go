package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// UserAchievement records an earned achievement. Rows are never removed.
type UserAchievement struct {
	ent.Schema
}

func (UserAchievement) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "user_achievements"},
		field.ID("user_id", "achievement_id"),
	}
}

func (UserAchievement) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("achievement_id").NotEmpty(),
		field.Time("earned_at").Immutable(),
	}
}
