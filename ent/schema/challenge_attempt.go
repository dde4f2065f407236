package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ChallengeAttempt is a learner's scored attempt at a daily challenge.
type ChallengeAttempt struct {
	ent.Schema
}

func (ChallengeAttempt) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "challenge_attempts"},
	}
}

func (ChallengeAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("user_id").NotEmpty(),
		field.String("challenge_id").NotEmpty(),
		field.Int("score").Range(0, 100),
		field.Int64("xp_earned"),
		field.Time("completed_at").Immutable(),
	}
}

func (ChallengeAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "challenge_id").Unique(),
	}
}
