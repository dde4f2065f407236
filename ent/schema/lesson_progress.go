package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// LessonProgress is a learner's progress on one lesson.
type LessonProgress struct {
	ent.Schema
}

func (LessonProgress) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "lesson_progress"},
		field.ID("user_id", "lesson_id"),
	}
}

func (LessonProgress) Mixin() []ent.Mixin {
	return []ent.Mixin{UpdatedAtMixin{}}
}

func (LessonProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("lesson_id").NotEmpty(),
		field.Int("completion").
			Comment("0..100, never decreases"),
		field.String("status"),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}
