package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/curriculum/ent/schema"
)

// schemas is every entity the store manages, in creation order.
var schemas = []ent.Interface{
	// Authored content.
	entschema.Module{},
	entschema.Lesson{},
	entschema.SkillNode{},
	entschema.Prerequisite{},
	entschema.AchievementType{},
	entschema.DailyChallenge{},
	// Learner data.
	entschema.LessonProgress{},
	entschema.SkillProgress{},
	entschema.UserAchievement{},
	entschema.XPTransaction{},
	entschema.ChallengeAttempt{},
	entschema.Profile{},
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, ts...)
}

func tables() ([]*schema.Table, error) {
	out := make([]*schema.Table, 0, len(schemas))
	for _, s := range schemas {
		t, err := table(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// table derives the SQL table of an entity declaration. The table name comes
// from its entsql annotation. The primary key is the "id" field, or the
// columns of a field.ID annotation. Mixin fields come first.
func table(s ent.Interface) (*schema.Table, error) {
	entity := reflect.TypeOf(s).Name()

	var name string
	var pk []string
	for _, a := range s.Annotations() {
		switch a := a.(type) {
		case entsql.Annotation:
			name = a.Table
		case *entsql.Annotation:
			name = a.Table
		case *field.Annotation:
			pk = a.ID
		}
	}
	if name == "" {
		return nil, fmt.Errorf("schema %s: no table annotation", entity)
	}

	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := schema.NewTable(name)
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("schema %s field %s: %w", entity, d.Name, d.Err)
		}
		c := &schema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Comment:  d.Comment,
		}
		if d.StorageKey != "" {
			c.Name = d.StorageKey
		}
		if d.Name == "id" && pk == nil {
			pk = []string{c.Name}
		}
		t.AddColumn(c)
	}

	if len(pk) == 0 {
		return nil, fmt.Errorf("schema %s: no primary key", entity)
	}
	for _, k := range pk {
		c, ok := t.Column(k)
		if !ok {
			return nil, fmt.Errorf("schema %s: primary key column %q is not a field", entity, k)
		}
		c.Key = schema.PrimaryKey
		t.PrimaryKey = append(t.PrimaryKey, c)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		for _, col := range d.Fields {
			if !t.HasColumn(col) {
				return nil, fmt.Errorf("schema %s: index on unknown column %q", entity, col)
			}
		}
		idxName := d.StorageKey
		if idxName == "" {
			idxName = strings.ToLower(entity) + "_" + strings.Join(d.Fields, "_")
		}
		t.AddIndex(idxName, d.Unique, d.Fields)
	}
	return t, nil
}
