package xp

import (
	"sort"
	"time"
)

// StreakStats describes consecutive days of activity.
type StreakStats struct {
	Current      int
	Longest      int
	LastActivity time.Time
}

// Streaks derives current and longest daily streaks from activity days.
// The current streak survives until the end of the day after the last
// activity; after that it is 0. The longest streak is tracked on its own and
// never inferred from anything else.
func Streaks(days []time.Time, now time.Time) StreakStats {
	if len(days) == 0 {
		return StreakStats{}
	}

	uniq := make(map[time.Time]bool, len(days))
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		d = Day(d)
		if !uniq[d] {
			uniq[d] = true
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var st StreakStats
	run := 0
	for i, d := range sorted {
		if i > 0 && d.Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		st.Longest = max(st.Longest, run)
	}

	st.LastActivity = sorted[len(sorted)-1]
	today := Day(now)
	if gap := today.Sub(st.LastActivity); gap <= 24*time.Hour {
		st.Current = run
	}
	return st
}
