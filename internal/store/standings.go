package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/ranking"
	"github.com/abhisek/curriculum/internal/xp"
)

// Standings returns the leaderboard inputs of every learner with any
// recorded activity, narrowed by scope:
//   - Discipline keeps XP earned from that discipline's lessons, challenges
//     and achievements, that discipline's modules and its achievements.
//   - Since keeps XP, module completions and achievements from that time on.
//
// Streaks are derived from the scoped XP activity.
func (s *Store) Standings(ctx context.Context, scope ranking.Scope) ([]ranking.Standing, error) {
	var modulePred *entsql.Predicate
	if scope.Discipline != "" {
		modulePred = entsql.EQ("discipline", string(scope.Discipline))
	}
	allModules, err := s.modules(ctx, nil)
	if err != nil {
		return nil, err
	}
	scopedModules, err := s.modules(ctx, modulePred)
	if err != nil {
		return nil, err
	}
	types, err := s.ListAchievementTypes(ctx)
	if err != nil {
		return nil, err
	}
	challenges, err := s.challengeDisciplines(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.xpTransactions(ctx, nil)
	if err != nil {
		return nil, err
	}
	completed, err := s.completedLessons(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.userAchievements(ctx, nil)
	if err != nil {
		return nil, err
	}

	lessonDiscipline := make(map[string]content.Discipline)
	for _, m := range allModules {
		for _, id := range m.LessonIDs {
			lessonDiscipline[id] = m.Discipline
		}
	}
	typeByID := make(map[string]content.AchievementType, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}

	inDiscipline := func(t xp.Transaction) bool {
		if scope.Discipline == "" {
			return true
		}
		switch t.Source {
		case xp.SourceLesson:
			return lessonDiscipline[t.ReferenceID] == scope.Discipline
		case xp.SourceDailyChallenge:
			return challenges[t.ReferenceID] == scope.Discipline
		case xp.SourceAchievement:
			return typeByID[t.ReferenceID].Category == string(scope.Discipline)
		default:
			return false
		}
	}

	standings := make(map[string]*ranking.Standing)
	get := func(userID string) *ranking.Standing {
		st, ok := standings[userID]
		if !ok {
			st = &ranking.Standing{UserID: userID}
			standings[userID] = st
		}
		return st
	}

	scopedTxs := make(map[string][]xp.Transaction)
	for _, t := range txs {
		get(t.UserID)
		if t.CreatedAt.Before(scope.Since) || !inDiscipline(t) {
			continue
		}
		scopedTxs[t.UserID] = append(scopedTxs[t.UserID], t)
	}
	now := s.now()
	for userID, userTxs := range scopedTxs {
		st := get(userID)
		st.TotalXP = xp.Total(userTxs)
		st.StreakDays = xp.Streaks(xp.ActivityDays(userTxs), now).Current
	}

	rowsByUser := make(map[string][]progress.LessonProgress)
	for _, r := range completed {
		rowsByUser[r.UserID] = append(rowsByUser[r.UserID], r)
	}
	moduleByID := make(map[string]content.Module, len(scopedModules))
	for _, m := range scopedModules {
		moduleByID[m.ID] = m
	}
	for userID, rows := range rowsByUser {
		st := get(userID)
		idx := progress.Index(rows)
		for _, id := range progress.CompletedModules(scopedModules, idx) {
			if moduleCompletedSince(moduleByID[id], idx, scope.Since) {
				st.CompletedCourses++
			}
		}
	}

	for _, e := range earned {
		st := get(e.UserID)
		t, ok := typeByID[e.AchievementID]
		if !ok || e.EarnedAt.Before(scope.Since) {
			continue
		}
		if scope.Discipline != "" && t.Category != string(scope.Discipline) {
			continue
		}
		st.AchievementTiers = append(st.AchievementTiers, t.Tier)
	}

	out := make([]ranking.Standing, 0, len(standings))
	for _, st := range standings {
		out = append(out, *st)
	}
	return out, nil
}

// moduleCompletedSince reports whether the module's last lesson completion
// is at or after since.
func moduleCompletedSince(m content.Module, idx map[string]progress.LessonProgress, since time.Time) bool {
	var last *time.Time
	for _, id := range m.LessonIDs {
		at := idx[id].CompletedAt
		if at != nil && (last == nil || at.After(*last)) {
			last = at
		}
	}
	return atOrAfter(last, since)
}

func (s *Store) challengeDisciplines(ctx context.Context) (map[string]content.Discipline, error) {
	sel := builder().Select("id", "discipline").From(builder().Table("daily_challenges"))
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query daily challenges: %w", err)
	}
	defer rows.Close()

	out := make(map[string]content.Discipline)
	for rows.Next() {
		var id, d string
		if err := rows.Scan(&id, &d); err != nil {
			return nil, fmt.Errorf("scan daily challenge: %w", err)
		}
		out[id] = content.Discipline(d)
	}
	return out, rows.Err()
}
