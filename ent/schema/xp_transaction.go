package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// XPTransaction is one immutable row of the XP ledger.
type XPTransaction struct {
	ent.Schema
}

func (XPTransaction) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "xp_transactions"},
	}
}

func (XPTransaction) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (XPTransaction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty(),
		field.String("user_id").NotEmpty(),
		field.Int64("amount").Positive(),
		field.String("source").
			Comment("lesson, daily_challenge, achievement or bonus"),
		field.String("reference_id"),
	}
}

func (XPTransaction) Indexes() []ent.Index {
	return []ent.Index{
		// One award per (user, source, reference).
		index.Fields("user_id", "source", "reference_id").Unique(),
	}
}
