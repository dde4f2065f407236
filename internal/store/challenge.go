package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/curriculum/internal/xp"
)

// ChallengeAttempt is a learner's attempt at a daily challenge.
type ChallengeAttempt struct {
	ID          string
	UserID      string
	ChallengeID string
	Score       int
	XPEarned    int64
	CompletedAt time.Time
}

// RecordChallengeAttempt stores the attempt and its XP reward in one
// transaction. A learner has at most one attempt per challenge; a repeat
// reports false and writes nothing.
func (s *Store) RecordChallengeAttempt(ctx context.Context, a ChallengeAttempt, reward *xp.Transaction) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = s.now()
	}

	var applied bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ins := builder().Insert("challenge_attempts").
			Columns("id", "user_id", "challenge_id", "score", "xp_earned", "completed_at").
			Values(a.ID, a.UserID, a.ChallengeID, a.Score, a.XPEarned, a.CompletedAt.UTC()).
			OnConflict(entsql.ConflictColumns("user_id", "challenge_id"), entsql.DoNothing())
		res, err := exec(ctx, tx, ins)
		if err != nil {
			return fmt.Errorf("insert challenge attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert challenge attempt: %w", err)
		}
		if n == 0 {
			return nil
		}
		applied = true

		if reward != nil {
			if _, err := s.appendXP(ctx, tx, *reward); err != nil {
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

// CountChallengeAttempts returns how many challenges the user has attempted.
func (s *Store) CountChallengeAttempts(ctx context.Context, userID string) (int, error) {
	sel := builder().Select().Count().
		From(builder().Table("challenge_attempts")).
		Where(entsql.EQ("user_id", userID))
	q, args := sel.Query()
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count challenge attempts: %w", err)
	}
	return n, nil
}
