// Package achievements evaluates typed unlock criteria against a learner's
// progress and awards newly met achievements exactly once.
package achievements

import (
	"github.com/abhisek/curriculum/internal/content"
)

// Snapshot is the aggregated progress an achievement is evaluated against.
// The caller scopes it: a discipline achievement sees that discipline's
// counts, a global one sees counts across all disciplines.
type Snapshot struct {
	LessonsCompleted    int
	PathProgress        map[string]int // module id -> percent
	DisciplineProgress  int
	StreakDays          int
	TotalXP             int64
	SkillNodesCompleted int
	ChallengesCompleted int
}

// Evaluation is the result of matching one criterion.
type Evaluation struct {
	IsEarned bool
	Progress int // 0..100
}

// Evaluate matches a's criterion against snap. Unknown criterion types and
// non-positive thresholds never earn and report no progress.
func Evaluate(a content.AchievementType, snap Snapshot) Evaluation {
	cr := a.Criterion
	switch cr.Type {
	case content.CriterionLessonCount:
		return ratio(int64(snap.LessonsCompleted), int64(cr.Count))
	case content.CriterionPathCompletion:
		pct, ok := snap.PathProgress[cr.PathID]
		if cr.PathID == "" || !ok || pct < 100 {
			return Evaluation{}
		}
		return Evaluation{IsEarned: true, Progress: 100}
	case content.CriterionDisciplineProgress:
		return ratio(int64(snap.DisciplineProgress), int64(cr.Percentage))
	case content.CriterionStreakDays:
		return ratio(int64(snap.StreakDays), int64(cr.Days))
	case content.CriterionTotalXP:
		return ratio(snap.TotalXP, cr.XP)
	case content.CriterionSkillNodeCount:
		return ratio(int64(snap.SkillNodesCompleted), int64(cr.Count))
	case content.CriterionChallengeCount:
		return ratio(int64(snap.ChallengesCompleted), int64(cr.Count))
	default:
		return Evaluation{}
	}
}

// ratio is earned when current reaches target. Progress is floored so that
// it only reads 100 once the target is met.
func ratio(current, target int64) Evaluation {
	if target <= 0 {
		return Evaluation{}
	}
	if current >= target {
		return Evaluation{IsEarned: true, Progress: 100}
	}
	if current <= 0 {
		return Evaluation{}
	}
	return Evaluation{Progress: int(100 * current / target)}
}

// Status is the achievement view model.
type Status struct {
	ID       string
	IsEarned bool
	Progress int
}

// View combines the evaluation with the recorded award. A recorded
// achievement stays earned at 100 even if progress later regresses.
func View(a content.AchievementType, snap Snapshot, recorded bool) Status {
	if recorded {
		return Status{ID: a.ID, IsEarned: true, Progress: 100}
	}
	ev := Evaluate(a, snap)
	return Status{ID: a.ID, IsEarned: ev.IsEarned, Progress: ev.Progress}
}
