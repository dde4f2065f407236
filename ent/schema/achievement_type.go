package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AchievementType is an authored achievement with its flattened criterion.
type AchievementType struct {
	ent.Schema
}

func (AchievementType) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "achievement_types"},
	}
}

func (AchievementType) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("category").
			Comment("A discipline, or global"),
		field.String("title"),
		field.Int("tier"),
		field.Int64("xp_reward"),
		field.String("criterion_type"),
		field.Int("criterion_count"),
		field.Int("criterion_percentage"),
		field.String("criterion_path"),
		field.Int("criterion_days"),
		field.Int64("criterion_xp"),
		field.Int("position"),
	}
}

func (AchievementType) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("category"),
	}
}
