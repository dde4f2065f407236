package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/unlock"
)

// lessonStatusExpr derives the merged status from the merged completion.
// Inside DO UPDATE, bare columns are the stored row.
const lessonStatusExpr = `CASE
	WHEN MAX(completion, excluded.completion) >= 100 THEN 'completed'
	WHEN MAX(completion, excluded.completion) > 0 OR status <> 'not_started' OR excluded.status <> 'not_started' THEN 'in_progress'
	ELSE 'not_started'
END`

// UpsertLessonProgress writes the single (user, lesson) row. Completion
// never decreases, so a completed lesson stays completed and keeps its
// first completion time. It returns the stored row.
func (s *Store) UpsertLessonProgress(ctx context.Context, p progress.LessonProgress) (progress.LessonProgress, error) {
	p = progress.Normalize(p)
	now := s.now().UTC()
	if p.Status == progress.StatusCompleted && p.CompletedAt == nil {
		p.CompletedAt = &now
	}

	var stored progress.LessonProgress
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ins := builder().Insert("lesson_progress").
			Columns("user_id", "lesson_id", "completion", "status", "completed_at", "updated_at").
			Values(p.UserID, p.LessonID, p.CompletionPercentage, string(p.Status), nullTime(p.CompletedAt), now).
			OnConflict(
				entsql.ConflictColumns("user_id", "lesson_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Set("completion", entsql.Expr("MAX(completion, excluded.completion)"))
					u.Set("status", entsql.Expr(lessonStatusExpr))
					u.Set("completed_at", entsql.Expr("COALESCE(completed_at, excluded.completed_at)"))
					u.SetExcluded("updated_at")
				}),
			)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("upsert lesson progress: %w", err)
		}

		rows, err := s.lessonProgress(ctx, tx, p.UserID, []string{p.LessonID})
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("upsert lesson progress: expected 1 row, got %d", len(rows))
		}
		stored = rows[0]
		return nil
	})
	return stored, err
}

// ListUserLessonProgress returns the user's rows for the given lessons.
func (s *Store) ListUserLessonProgress(ctx context.Context, userID string, lessonIDs []string) ([]progress.LessonProgress, error) {
	return s.lessonProgress(ctx, s.db, userID, lessonIDs)
}

func (s *Store) lessonProgress(ctx context.Context, q querier, userID string, lessonIDs []string) ([]progress.LessonProgress, error) {
	sel := builder().Select("user_id", "lesson_id", "completion", "status", "completed_at").
		From(builder().Table("lesson_progress")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("lesson_id", anys(lessonIDs)...))).
		OrderBy("lesson_id")
	rows, err := query(ctx, q, sel)
	if err != nil {
		return nil, fmt.Errorf("query lesson progress: %w", err)
	}
	defer rows.Close()

	return scanLessonProgress(rows)
}

// UpsertSkillProgress writes the single (user, node) row. A completed node
// stays completed and keeps its first earned time.
func (s *Store) UpsertSkillProgress(ctx context.Context, p progress.SkillProgress) (progress.SkillProgress, error) {
	now := s.now().UTC()
	if p.Status == unlock.StateCompleted && p.EarnedAt == nil {
		p.EarnedAt = &now
	}
	if p.Status != unlock.StateCompleted {
		p.EarnedAt = nil
	}

	var stored progress.SkillProgress
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ins := builder().Insert("skill_progress").
			Columns("user_id", "node_id", "status", "earned_at", "updated_at").
			Values(p.UserID, p.NodeID, string(p.Status), nullTime(p.EarnedAt), now).
			OnConflict(
				entsql.ConflictColumns("user_id", "node_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Set("status", entsql.Expr("CASE WHEN status = 'completed' THEN status ELSE excluded.status END"))
					u.Set("earned_at", entsql.Expr("COALESCE(earned_at, excluded.earned_at)"))
					u.SetExcluded("updated_at")
				}),
			)
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("upsert skill progress: %w", err)
		}

		rows, err := s.skillProgress(ctx, tx, p.UserID, []string{p.NodeID})
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("upsert skill progress: expected 1 row, got %d", len(rows))
		}
		stored = rows[0]
		return nil
	})
	return stored, err
}

// ListUserSkillProgress returns the user's rows for the given nodes.
func (s *Store) ListUserSkillProgress(ctx context.Context, userID string, nodeIDs []string) ([]progress.SkillProgress, error) {
	return s.skillProgress(ctx, s.db, userID, nodeIDs)
}

func (s *Store) skillProgress(ctx context.Context, q querier, userID string, nodeIDs []string) ([]progress.SkillProgress, error) {
	sel := builder().Select("user_id", "node_id", "status", "earned_at").
		From(builder().Table("skill_progress")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("node_id", anys(nodeIDs)...))).
		OrderBy("node_id")
	rows, err := query(ctx, q, sel)
	if err != nil {
		return nil, fmt.Errorf("query skill progress: %w", err)
	}
	defer rows.Close()

	var out []progress.SkillProgress
	for rows.Next() {
		var p progress.SkillProgress
		var status string
		var earnedAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.NodeID, &status, &earnedAt); err != nil {
			return nil, fmt.Errorf("scan skill progress: %w", err)
		}
		p.Status = unlock.State(status)
		p.EarnedAt = timePtr(earnedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// completedLessons returns every completed lesson row with its completion
// time, for standings.
func (s *Store) completedLessons(ctx context.Context) ([]progress.LessonProgress, error) {
	sel := builder().Select("user_id", "lesson_id", "completion", "status", "completed_at").
		From(builder().Table("lesson_progress")).
		Where(entsql.EQ("status", string(progress.StatusCompleted)))
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query completed lessons: %w", err)
	}
	defer rows.Close()

	return scanLessonProgress(rows)
}

// atOrAfter reports whether t is set and not before since. A zero since
// matches everything.
func atOrAfter(t *time.Time, since time.Time) bool {
	if since.IsZero() {
		return true
	}
	return t != nil && !t.Before(since)
}

func scanLessonProgress(rows *sql.Rows) ([]progress.LessonProgress, error) {
	var out []progress.LessonProgress
	for rows.Next() {
		var p progress.LessonProgress
		var status string
		var completedAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.LessonID, &p.CompletionPercentage, &status, &completedAt); err != nil {
			return nil, fmt.Errorf("scan lesson progress: %w", err)
		}
		p.Status = progress.Status(status)
		p.CompletedAt = timePtr(completedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}
