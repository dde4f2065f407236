package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/curriculum/internal/xp"
)

// SaveProfile replaces the user's cached profile. XP only grows, so a profile
// with less XP than the cached one is stale and left unsaved.
func (s *Store) SaveProfile(ctx context.Context, p xp.Profile) error {
	var lastActivity sql.NullTime
	if !p.LastActivityDate.IsZero() {
		lastActivity = sql.NullTime{Time: p.LastActivityDate.UTC(), Valid: true}
	}

	ins := builder().Insert("profiles").
		Columns("user_id", "total_xp", "level", "next_level_xp", "streak_days", "longest_streak", "last_activity", "updated_at").
		Values(p.UserID, p.TotalXP, p.Level, p.NextLevelXP, p.StreakDays, p.LongestStreak, lastActivity, s.now().UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
			entsql.UpdateWhere(entsql.ExprP("profiles.total_xp <= excluded.total_xp")),
		)
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID string) (xp.Profile, error) {
	sel := builder().Select("user_id", "total_xp", "level", "next_level_xp", "streak_days", "longest_streak", "last_activity").
		From(builder().Table("profiles")).
		Where(entsql.EQ("user_id", userID))
	q, args := sel.Query()

	var p xp.Profile
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, q, args...).
		Scan(&p.UserID, &p.TotalXP, &p.Level, &p.NextLevelXP, &p.StreakDays, &p.LongestStreak, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return xp.Profile{}, fmt.Errorf("profile %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return xp.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if last.Valid {
		p.LastActivityDate = last.Time.UTC()
	}
	return p, nil
}
