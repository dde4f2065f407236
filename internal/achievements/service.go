package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/logging"
	"github.com/abhisek/curriculum/internal/xp"
)

// Earned is a recorded achievement. It is written once and never removed.
type Earned struct {
	UserID        string
	AchievementID string
	EarnedAt      time.Time
}

// Recorded indexes earned rows by achievement id.
func Recorded(rows []Earned) map[string]bool {
	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.AchievementID] = true
	}
	return out
}

// Award is one achievement grant together with its XP reward.
type Award struct {
	UserID        string
	AchievementID string
	// XP is the reward transaction, nil when the achievement grants no XP.
	XP *xp.Transaction
}

// Awarder persists awards. The insert is the only source of truth: a
// conflict on (user, achievement) reports false and writes no XP.
type Awarder interface {
	AwardAchievementIfUnearned(ctx context.Context, a Award) (bool, error)
}

// Service awards newly met achievements.
type Service struct {
	awarder Awarder
	xp      *xp.Service
	log     *zap.Logger
}

// NewService creates an achievements service. The XP service stamps reward
// transactions.
func NewService(awarder Awarder, xpSvc *xp.Service, log *zap.Logger) *Service {
	return &Service{awarder: awarder, xp: xpSvc, log: logging.OrNop(log)}
}

// Sync evaluates every type not yet recorded for the user and awards the
// ones that are met. It returns the ids that were newly awarded.
// Re-running with the same or lower progress awards nothing.
func (s *Service) Sync(ctx context.Context, userID string, types []content.AchievementType, snap Snapshot, recorded map[string]bool) ([]string, error) {
	var awarded []string
	var errs []error
	for _, a := range types {
		if recorded[a.ID] {
			continue
		}
		if !a.Criterion.Type.Known() {
			s.log.Warn("unknown achievement criterion",
				zap.String("achievement_id", a.ID),
				zap.String("criterion", string(a.Criterion.Type)))
			continue
		}
		if !Evaluate(a, snap).IsEarned {
			continue
		}

		award := Award{UserID: userID, AchievementID: a.ID}
		if a.XPReward > 0 {
			tx, err := s.xp.NewTransaction(userID, a.XPReward, xp.SourceAchievement, a.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			award.XP = &tx
		}

		ok, err := s.awarder.AwardAchievementIfUnearned(ctx, award)
		if err != nil {
			errs = append(errs, fmt.Errorf("award %s: %w", a.ID, err))
			continue
		}
		if ok {
			s.log.Info("achievement earned",
				zap.String("user_id", userID),
				zap.String("achievement_id", a.ID),
				zap.Int64("xp", a.XPReward))
			awarded = append(awarded, a.ID)
		}
	}
	return awarded, errors.Join(errs...)
}
