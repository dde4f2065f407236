package xp

import "time"

// Profile is the cached learner aggregate. It is always recomputed from the
// ledger and never edited by hand.
type Profile struct {
	UserID           string
	TotalXP          int64
	Level            int
	NextLevelXP      int64
	StreakDays       int
	LongestStreak    int
	LastActivityDate time.Time
}

// Recompute derives the profile from the user's ledger.
func Recompute(userID string, txs []Transaction, curve Curve, now time.Time) Profile {
	total := Total(txs)
	st := Streaks(ActivityDays(txs), now)
	return Profile{
		UserID:           userID,
		TotalXP:          total,
		Level:            curve.Level(total),
		NextLevelXP:      curve.NextLevelXP(total),
		StreakDays:       st.Current,
		LongestStreak:    st.Longest,
		LastActivityDate: st.LastActivity,
	}
}
