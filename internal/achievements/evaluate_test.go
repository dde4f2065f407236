package achievements

import (
	"testing"

	"github.com/abhisek/curriculum/internal/content"
)

func achievement(cr content.Criterion) content.AchievementType {
	return content.AchievementType{ID: "a1", Category: "aerospace", Tier: content.TierBronze, XPReward: 25, Criterion: cr}
}

func TestEvaluate(t *testing.T) {
	snap := Snapshot{
		LessonsCompleted:    2,
		PathProgress:        map[string]int{"aero-fundamentals": 100, "aero-propulsion": 50},
		DisciplineProgress:  30,
		StreakDays:          3,
		TotalXP:             450,
		SkillNodesCompleted: 1,
		ChallengesCompleted: 4,
	}

	tests := []struct {
		name       string
		cr         content.Criterion
		wantEarned bool
		wantPct    int
	}{
		{"lesson count partial", content.Criterion{Type: content.CriterionLessonCount, Count: 5}, false, 40},
		{"lesson count met", content.Criterion{Type: content.CriterionLessonCount, Count: 2}, true, 100},
		{"lesson count floors", content.Criterion{Type: content.CriterionLessonCount, Count: 3}, false, 66},
		{"path complete", content.Criterion{Type: content.CriterionPathCompletion, PathID: "aero-fundamentals"}, true, 100},
		{"path partial is binary", content.Criterion{Type: content.CriterionPathCompletion, PathID: "aero-propulsion"}, false, 0},
		{"path unknown", content.Criterion{Type: content.CriterionPathCompletion, PathID: "nope"}, false, 0},
		{"path missing id", content.Criterion{Type: content.CriterionPathCompletion}, false, 0},
		{"discipline partial", content.Criterion{Type: content.CriterionDisciplineProgress, Percentage: 60}, false, 50},
		{"discipline met", content.Criterion{Type: content.CriterionDisciplineProgress, Percentage: 30}, true, 100},
		{"streak", content.Criterion{Type: content.CriterionStreakDays, Days: 7}, false, 42},
		{"total xp", content.Criterion{Type: content.CriterionTotalXP, XP: 400}, true, 100},
		{"skill nodes", content.Criterion{Type: content.CriterionSkillNodeCount, Count: 4}, false, 25},
		{"challenges", content.Criterion{Type: content.CriterionChallengeCount, Count: 4}, true, 100},
		{"unknown type", content.Criterion{Type: "quiz_perfect_score", Count: 1}, false, 0},
		{"zero count", content.Criterion{Type: content.CriterionLessonCount}, false, 0},
		{"negative percentage", content.Criterion{Type: content.CriterionDisciplineProgress, Percentage: -10}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(achievement(tt.cr), snap)
			if got.IsEarned != tt.wantEarned {
				t.Errorf("IsEarned = %v, want %v", got.IsEarned, tt.wantEarned)
			}
			if got.Progress != tt.wantPct {
				t.Errorf("Progress = %d, want %d", got.Progress, tt.wantPct)
			}
		})
	}
}

func TestEvaluate_ProgressNeverReports100Early(t *testing.T) {
	a := achievement(content.Criterion{Type: content.CriterionLessonCount, Count: 200})
	got := Evaluate(a, Snapshot{LessonsCompleted: 199})
	if got.IsEarned || got.Progress != 99 {
		t.Errorf("got %+v, want unearned at 99", got)
	}
}

func TestView_RecordedStaysEarned(t *testing.T) {
	a := achievement(content.Criterion{Type: content.CriterionLessonCount, Count: 5})

	got := View(a, Snapshot{LessonsCompleted: 0}, true)
	if !got.IsEarned || got.Progress != 100 {
		t.Errorf("recorded achievement = %+v, want earned at 100", got)
	}

	got = View(a, Snapshot{LessonsCompleted: 1}, false)
	if got.IsEarned || got.Progress != 20 {
		t.Errorf("unrecorded achievement = %+v, want unearned at 20", got)
	}
	if got.ID != "a1" {
		t.Errorf("ID = %q, want a1", got.ID)
	}
}
