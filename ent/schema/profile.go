package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Profile is the cached learner aggregate, recomputed from the XP ledger.
type Profile struct {
	ent.Schema
}

func (Profile) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "profiles"},
	}
}

func (Profile) Mixin() []ent.Mixin {
	return []ent.Mixin{UpdatedAtMixin{}}
}

func (Profile) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("user_id").
			NotEmpty(),
		field.Int64("total_xp"),
		field.Int("level"),
		field.Int64("next_level_xp"),
		field.Int("streak_days"),
		field.Int("longest_streak"),
		field.Time("last_activity").
			Optional().
			Nillable(),
	}
}
