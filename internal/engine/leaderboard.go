package engine

import (
	"context"
	"fmt"

	"github.com/abhisek/curriculum/internal/ranking"
)

// Board is a ranked leaderboard together with the requesting learner's row.
type Board struct {
	Metric ranking.Metric
	Scope  ranking.Scope
	Rows   []ranking.Row

	// Self is the learner's own row, which may fall outside Rows.
	Self *ranking.Row
}

// Leaderboard ranks every learner in scope by m and keeps the top limit
// rows. A limit <= 0 keeps all of them.
func (e *Engine) Leaderboard(ctx context.Context, userID string, m ranking.Metric, scope ranking.Scope, limit int) (Board, error) {
	standings, err := e.catalog.Standings(ctx, scope)
	if err != nil {
		return Board{}, fmt.Errorf("load standings: %w", err)
	}
	all := ranking.Rank(standings, m, 0)

	b := Board{Metric: m, Scope: scope, Rows: all}
	if limit > 0 && len(all) > limit {
		b.Rows = all[:limit]
	}
	if userID != "" {
		if r, ok := ranking.Find(all, userID); ok {
			b.Self = &r
		}
	}
	return b, nil
}
