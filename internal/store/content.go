package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/content"
)

const (
	kindModule = "module"
	kindSkill  = "skill"
)

// ImportCatalog replaces all authored content with c. Learner data is left
// untouched; rows that reference content no longer present simply stop
// being read.
func (s *Store) ImportCatalog(ctx context.Context, c *content.Catalog) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range []string{"modules", "lessons", "skill_nodes", "prerequisites", "achievement_types", "daily_challenges"} {
			if _, err := exec(ctx, tx, builder().Delete(t)); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}

		for i, m := range c.Modules {
			ins := builder().Insert("modules").
				Columns("id", "discipline", "title", "position").
				Values(m.ID, string(m.Discipline), m.Title, i).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert module %s: %w", m.ID, err)
			}
			if err := insertPrerequisites(ctx, tx, kindModule, m.ID, m.Prerequisites); err != nil {
				return err
			}
		}

		for _, l := range c.Lessons {
			ins := builder().Insert("lessons").
				Columns("id", "module_id", "title", "position", "xp_reward").
				Values(l.ID, l.ModuleID, l.Title, l.Order, l.XPReward).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert lesson %s: %w", l.ID, err)
			}
		}

		for i, n := range c.SkillNodes {
			ins := builder().Insert("skill_nodes").
				Columns("id", "discipline", "title", "tier", "xp_required", "lesson_id", "milestone", "position").
				Values(n.ID, string(n.Discipline), n.Title, int(n.Tier), n.XPRequired, n.LessonID, n.IsMilestone, i).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert skill node %s: %w", n.ID, err)
			}
			if err := insertPrerequisites(ctx, tx, kindSkill, n.ID, n.Prerequisites); err != nil {
				return err
			}
		}

		for i, a := range c.Achievements {
			cr := a.Criterion
			ins := builder().Insert("achievement_types").
				Columns("id", "category", "title", "tier", "xp_reward",
					"criterion_type", "criterion_count", "criterion_percentage",
					"criterion_path", "criterion_days", "criterion_xp", "position").
				Values(a.ID, a.Category, a.Title, int(a.Tier), a.XPReward,
					string(cr.Type), cr.Count, cr.Percentage,
					cr.PathID, cr.Days, cr.XP, i).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert achievement type %s: %w", a.ID, err)
			}
		}

		for _, ch := range c.Challenges {
			ins := builder().Insert("daily_challenges").
				Columns("id", "date", "discipline", "lesson_id", "title", "xp_reward").
				Values(ch.ID, ch.Date, string(ch.Discipline), ch.LessonID, ch.Title, ch.XPReward).
				OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
			if _, err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert daily challenge %s: %w", ch.ID, err)
			}
		}

		s.log.Info("catalog imported",
			zap.String("schema_version", c.SchemaVersion),
			zap.Int("modules", len(c.Modules)),
			zap.Int("lessons", len(c.Lessons)),
			zap.Int("skill_nodes", len(c.SkillNodes)),
			zap.Int("achievements", len(c.Achievements)),
			zap.Int("challenges", len(c.Challenges)))
		return nil
	})
}

func insertPrerequisites(ctx context.Context, tx *sql.Tx, kind, nodeID string, prereqs []string) error {
	for i, p := range prereqs {
		ins := builder().Insert("prerequisites").
			Columns("kind", "node_id", "prerequisite_id", "position").
			Values(kind, nodeID, p, i).
			OnConflict(entsql.ConflictColumns("kind", "node_id", "prerequisite_id"), entsql.DoNothing())
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert %s prerequisite %s -> %s: %w", kind, nodeID, p, err)
		}
	}
	return nil
}

// prerequisites returns the prerequisite ids of each node of kind, in
// authored order.
func (s *Store) prerequisites(ctx context.Context, kind string, nodeIDs []string) (map[string][]string, error) {
	sel := builder().Select("node_id", "prerequisite_id").
		From(builder().Table("prerequisites")).
		Where(entsql.And(entsql.EQ("kind", kind), entsql.In("node_id", anys(nodeIDs)...))).
		OrderBy("node_id", "position")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var node, prereq string
		if err := rows.Scan(&node, &prereq); err != nil {
			return nil, fmt.Errorf("scan prerequisite: %w", err)
		}
		out[node] = append(out[node], prereq)
	}
	return out, rows.Err()
}

// ListModules returns the modules of a discipline in authored order, with
// their ordered lesson ids and prerequisite ids.
func (s *Store) ListModules(ctx context.Context, discipline content.Discipline) ([]content.Module, error) {
	return s.modules(ctx, entsql.EQ("discipline", string(discipline)))
}

// modules lists modules matching p, or every module when p is nil.
func (s *Store) modules(ctx context.Context, p *entsql.Predicate) ([]content.Module, error) {
	sel := builder().Select("id", "discipline", "title").
		From(builder().Table("modules")).
		OrderBy("position", "id")
	if p != nil {
		sel = sel.Where(p)
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	var modules []content.Module
	for rows.Next() {
		var m content.Module
		var d string
		if err := rows.Scan(&m.ID, &d, &m.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan module: %w", err)
		}
		m.Discipline = content.Discipline(d)
		modules = append(modules, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	if len(modules) == 0 {
		return nil, nil
	}

	ids := make([]string, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	lessons, err := s.ListLessonsForModules(ctx, ids)
	if err != nil {
		return nil, err
	}
	byModule := make(map[string][]string)
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l.ID)
	}
	prereqs, err := s.prerequisites(ctx, kindModule, ids)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		modules[i].LessonIDs = byModule[modules[i].ID]
		modules[i].Prerequisites = prereqs[modules[i].ID]
	}
	return modules, nil
}

func scanLesson(sc interface{ Scan(...any) error }) (content.Lesson, error) {
	var l content.Lesson
	err := sc.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Order, &l.XPReward)
	return l, err
}

// ListLessonsForModules returns the lessons of several modules, ordered by
// module then position.
func (s *Store) ListLessonsForModules(ctx context.Context, moduleIDs []string) ([]content.Lesson, error) {
	sel := builder().Select("id", "module_id", "title", "position", "xp_reward").
		From(builder().Table("lessons")).
		Where(entsql.In("module_id", anys(moduleIDs)...)).
		OrderBy("module_id", "position", "id")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []content.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// GetLesson returns one lesson or ErrNotFound.
func (s *Store) GetLesson(ctx context.Context, id string) (content.Lesson, error) {
	sel := builder().Select("id", "module_id", "title", "position", "xp_reward").
		From(builder().Table("lessons")).
		Where(entsql.EQ("id", id))
	q, args := sel.Query()
	l, err := scanLesson(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Lesson{}, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return content.Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

// GetModule returns one module with its lessons and prerequisites, or ErrNotFound.
func (s *Store) GetModule(ctx context.Context, id string) (content.Module, error) {
	sel := builder().Select("discipline").
		From(builder().Table("modules")).
		Where(entsql.EQ("id", id))
	q, args := sel.Query()
	var d string
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Module{}, fmt.Errorf("module %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return content.Module{}, fmt.Errorf("get module: %w", err)
	}
	modules, err := s.ListModules(ctx, content.Discipline(d))
	if err != nil {
		return content.Module{}, err
	}
	for _, m := range modules {
		if m.ID == id {
			return m, nil
		}
	}
	return content.Module{}, fmt.Errorf("module %q: %w", id, ErrNotFound)
}

// GetSkillTree returns the skill nodes of a discipline in authored order.
func (s *Store) GetSkillTree(ctx context.Context, discipline content.Discipline) ([]content.SkillNode, error) {
	sel := builder().Select("id", "discipline", "title", "tier", "xp_required", "lesson_id", "milestone").
		From(builder().Table("skill_nodes")).
		Where(entsql.EQ("discipline", string(discipline))).
		OrderBy("position", "id")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query skill nodes: %w", err)
	}
	var nodes []content.SkillNode
	for rows.Next() {
		var n content.SkillNode
		var d string
		var tier int
		if err := rows.Scan(&n.ID, &d, &n.Title, &tier, &n.XPRequired, &n.LessonID, &n.IsMilestone); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan skill node: %w", err)
		}
		n.Discipline = content.Discipline(d)
		n.Tier = content.Tier(tier)
		nodes = append(nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query skill nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	prereqs, err := s.prerequisites(ctx, kindSkill, ids)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		nodes[i].Prerequisites = prereqs[nodes[i].ID]
	}
	return nodes, nil
}

// ListAchievementTypes returns the achievement types of the given
// categories, or all of them when none are given.
func (s *Store) ListAchievementTypes(ctx context.Context, categories ...string) ([]content.AchievementType, error) {
	sel := builder().Select("id", "category", "title", "tier", "xp_reward",
		"criterion_type", "criterion_count", "criterion_percentage",
		"criterion_path", "criterion_days", "criterion_xp").
		From(builder().Table("achievement_types")).
		OrderBy("position", "id")
	if len(categories) > 0 {
		sel = sel.Where(entsql.In("category", anys(categories)...))
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query achievement types: %w", err)
	}
	defer rows.Close()

	var types []content.AchievementType
	for rows.Next() {
		var a content.AchievementType
		var tier int
		var crType string
		err := rows.Scan(&a.ID, &a.Category, &a.Title, &tier, &a.XPReward,
			&crType, &a.Criterion.Count, &a.Criterion.Percentage,
			&a.Criterion.PathID, &a.Criterion.Days, &a.Criterion.XP)
		if err != nil {
			return nil, fmt.Errorf("scan achievement type: %w", err)
		}
		a.Tier = content.Tier(tier)
		a.Criterion.Type = content.CriterionType(crType)
		types = append(types, a)
	}
	return types, rows.Err()
}

func scanChallenge(sc interface{ Scan(...any) error }) (content.DailyChallenge, error) {
	var c content.DailyChallenge
	var d string
	err := sc.Scan(&c.ID, &c.Date, &d, &c.LessonID, &c.Title, &c.XPReward)
	c.Discipline = content.Discipline(d)
	return c, err
}

func challengeSelector() *entsql.Selector {
	return builder().Select("id", "date", "discipline", "lesson_id", "title", "xp_reward").
		From(builder().Table("daily_challenges"))
}

// GetDailyChallenge returns the challenge for a discipline on date
// (YYYY-MM-DD). A discipline-specific challenge wins over one without a
// discipline. Returns ErrNotFound when there is none.
func (s *Store) GetDailyChallenge(ctx context.Context, discipline content.Discipline, date string) (content.DailyChallenge, error) {
	sel := challengeSelector().
		Where(entsql.And(
			entsql.EQ("date", date),
			entsql.In("discipline", string(discipline), ""),
		)).
		OrderBy(entsql.Desc("discipline"), "id").
		Limit(1)
	q, args := sel.Query()
	c, err := scanChallenge(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return content.DailyChallenge{}, fmt.Errorf("daily challenge %s/%s: %w", discipline, date, ErrNotFound)
	}
	if err != nil {
		return content.DailyChallenge{}, fmt.Errorf("get daily challenge: %w", err)
	}
	return c, nil
}

// GetChallenge returns a challenge by id or ErrNotFound.
func (s *Store) GetChallenge(ctx context.Context, id string) (content.DailyChallenge, error) {
	q, args := challengeSelector().Where(entsql.EQ("id", id)).Query()
	c, err := scanChallenge(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return content.DailyChallenge{}, fmt.Errorf("daily challenge %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return content.DailyChallenge{}, fmt.Errorf("get daily challenge: %w", err)
	}
	return c, nil
}

// ListDisciplines returns every discipline that has modules or skill nodes, sorted.
func (s *Store) ListDisciplines(ctx context.Context) ([]content.Discipline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT discipline FROM modules UNION SELECT discipline FROM skill_nodes ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("query disciplines: %w", err)
	}
	defer rows.Close()

	var out []content.Discipline
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan discipline: %w", err)
		}
		out = append(out, content.Discipline(d))
	}
	return out, rows.Err()
}
