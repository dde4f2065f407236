// Package ranking orders learners into leaderboards.
package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/curriculum/internal/content"
)

// Metric selects the value a leaderboard is sorted by.
type Metric string

const (
	MetricTotalXP          Metric = "total_xp"
	MetricStreakDays       Metric = "streak_days"
	MetricCompletedCourses Metric = "completed_course_count"
	MetricAchievementScore Metric = "achievement_score"
)

// AllMetrics returns every supported metric.
func AllMetrics() []Metric {
	return []Metric{MetricTotalXP, MetricStreakDays, MetricCompletedCourses, MetricAchievementScore}
}

// ParseMetric accepts the metric names and a few short aliases.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xp", "total_xp":
		return MetricTotalXP, nil
	case "streak", "streak_days":
		return MetricStreakDays, nil
	case "courses", "completed_course_count", "completedcoursecount":
		return MetricCompletedCourses, nil
	case "achievements", "achievement_score", "achievementscore":
		return MetricAchievementScore, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Scope narrows the standings a leaderboard is computed from. Zero values
// mean no filter.
type Scope struct {
	Discipline content.Discipline
	Since      time.Time
}

// Standing is one learner's raw leaderboard inputs.
type Standing struct {
	UserID           string
	TotalXP          int64
	StreakDays       int
	CompletedCourses int
	AchievementTiers []content.Tier
}

// AchievementScore sums tier weights over earned achievements.
func AchievementScore(tiers []content.Tier) int64 {
	var score int64
	for _, t := range tiers {
		score += int64(t.Weight())
	}
	return score
}

// Value returns the standing's value for m.
func (s Standing) Value(m Metric) int64 {
	switch m {
	case MetricTotalXP:
		return s.TotalXP
	case MetricStreakDays:
		return int64(s.StreakDays)
	case MetricCompletedCourses:
		return int64(s.CompletedCourses)
	case MetricAchievementScore:
		return AchievementScore(s.AchievementTiers)
	default:
		return 0
	}
}

// Row is the leaderboard view model.
type Row struct {
	UserID      string
	Rank        int
	MetricValue int64
}

// Rank sorts standings by m descending, breaking ties by ascending user id,
// and numbers them 1..n. A limit <= 0 returns every row.
func Rank(standings []Standing, m Metric, limit int) []Row {
	rows := make([]Row, 0, len(standings))
	seen := make(map[string]bool, len(standings))
	for _, s := range standings {
		if s.UserID == "" || seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		rows = append(rows, Row{UserID: s.UserID, MetricValue: s.Value(m)})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MetricValue != rows[j].MetricValue {
			return rows[i].MetricValue > rows[j].MetricValue
		}
		return rows[i].UserID < rows[j].UserID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Find returns the row for userID.
func Find(rows []Row, userID string) (Row, bool) {
	for _, r := range rows {
		if r.UserID == userID {
			return r, true
		}
	}
	return Row{}, false
}
