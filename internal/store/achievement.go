package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/curriculum/internal/achievements"
)

// AwardAchievementIfUnearned records the achievement and its XP reward in
// one transaction. The (user, achievement) key decides: when a row already
// exists nothing is written and false is returned.
func (s *Store) AwardAchievementIfUnearned(ctx context.Context, a achievements.Award) (bool, error) {
	earnedAt := s.now().UTC()
	if a.XP != nil && !a.XP.CreatedAt.IsZero() {
		earnedAt = a.XP.CreatedAt.UTC()
	}

	var applied bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ins := builder().Insert("user_achievements").
			Columns("user_id", "achievement_id", "earned_at").
			Values(a.UserID, a.AchievementID, earnedAt).
			OnConflict(entsql.ConflictColumns("user_id", "achievement_id"), entsql.DoNothing())
		res, err := exec(ctx, tx, ins)
		if err != nil {
			return fmt.Errorf("insert user achievement: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert user achievement: %w", err)
		}
		if n == 0 {
			return nil
		}
		applied = true

		if a.XP != nil {
			if _, err := s.appendXP(ctx, tx, *a.XP); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ListUserAchievements returns the user's earned rows for the given types,
// or all of them when typeIDs is nil.
func (s *Store) ListUserAchievements(ctx context.Context, userID string, typeIDs []string) ([]achievements.Earned, error) {
	p := entsql.EQ("user_id", userID)
	if typeIDs != nil {
		p = entsql.And(p, entsql.In("achievement_id", anys(typeIDs)...))
	}
	return s.userAchievements(ctx, p)
}

func (s *Store) userAchievements(ctx context.Context, p *entsql.Predicate) ([]achievements.Earned, error) {
	sel := builder().Select("user_id", "achievement_id", "earned_at").
		From(builder().Table("user_achievements")).
		OrderBy("earned_at", "achievement_id")
	if p != nil {
		sel = sel.Where(p)
	}
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query user achievements: %w", err)
	}
	defer rows.Close()

	var out []achievements.Earned
	for rows.Next() {
		var e achievements.Earned
		if err := rows.Scan(&e.UserID, &e.AchievementID, &e.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		e.EarnedAt = e.EarnedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
