package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DailyChallenge is a dated challenge.
type DailyChallenge struct {
	ent.Schema
}

func (DailyChallenge) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "daily_challenges"},
	}
}

func (DailyChallenge) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("date").
			Comment("YYYY-MM-DD"),
		field.String("discipline"),
		field.String("lesson_id"),
		field.String("title"),
		field.Int64("xp_reward"),
	}
}

func (DailyChallenge) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("date"),
	}
}
