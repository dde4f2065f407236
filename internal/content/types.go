package content

import (
	"fmt"
	"time"
)

// Discipline names a curriculum family such as "aerospace" or "electrical".
// Disciplines are data, not code: every engine operation takes one as a parameter.
type Discipline string

// CategoryGlobal marks achievements that span every discipline.
const CategoryGlobal = "global"

// Module is an ordered group of lessons, also called a learning path.
// Progress is derived from lesson progress and never stored on the module.
type Module struct {
	ID            string     `yaml:"id"`
	Discipline    Discipline `yaml:"discipline"`
	Title         string     `yaml:"title"`
	LessonIDs     []string   `yaml:"lessons"`
	Prerequisites []string   `yaml:"prerequisites,omitempty"`
}

// Lesson is a single unit of content inside a module.
type Lesson struct {
	ID       string `yaml:"id"`
	ModuleID string `yaml:"module"`
	Title    string `yaml:"title"`
	Order    int    `yaml:"order"`
	XPReward int64  `yaml:"xp_reward"`
}

// SkillNode is a node of a discipline's skill tree, gated by prerequisite
// nodes and a minimum total XP.
type SkillNode struct {
	ID            string     `yaml:"id"`
	Discipline    Discipline `yaml:"discipline"`
	Title         string     `yaml:"title"`
	Tier          Tier       `yaml:"tier"`
	XPRequired    int64      `yaml:"xp_required"`
	Prerequisites []string   `yaml:"prerequisites,omitempty"`
	LessonID      string     `yaml:"lesson,omitempty"`
	IsMilestone   bool       `yaml:"milestone,omitempty"`
}

// CriterionType identifies how an achievement is unlocked.
type CriterionType string

const (
	CriterionLessonCount        CriterionType = "lesson_completion_count"
	CriterionPathCompletion     CriterionType = "learning_path_completion"
	CriterionDisciplineProgress CriterionType = "discipline_progress"
	CriterionStreakDays         CriterionType = "streak_days"
	CriterionTotalXP            CriterionType = "total_xp"
	CriterionSkillNodeCount     CriterionType = "skill_node_completion"
	CriterionChallengeCount     CriterionType = "daily_challenge_count"
)

// KnownCriterionTypes returns every criterion type the evaluator understands.
func KnownCriterionTypes() []CriterionType {
	return []CriterionType{
		CriterionLessonCount,
		CriterionPathCompletion,
		CriterionDisciplineProgress,
		CriterionStreakDays,
		CriterionTotalXP,
		CriterionSkillNodeCount,
		CriterionChallengeCount,
	}
}

// Known reports whether the evaluator has a rule for t.
func (t CriterionType) Known() bool {
	for _, k := range KnownCriterionTypes() {
		if k == t {
			return true
		}
	}
	return false
}

// Criterion is the typed unlock rule of an achievement. Only the fields
// relevant to Type are read.
type Criterion struct {
	Type       CriterionType `yaml:"type"`
	Count      int           `yaml:"count,omitempty"`
	Percentage int           `yaml:"percentage,omitempty"`
	PathID     string        `yaml:"path,omitempty"`
	Days       int           `yaml:"days,omitempty"`
	XP         int64         `yaml:"xp,omitempty"`
}

// AchievementType is an authored achievement definition.
type AchievementType struct {
	ID        string    `yaml:"id"`
	Category  string    `yaml:"category"`
	Title     string    `yaml:"title"`
	Tier      Tier      `yaml:"tier"`
	XPReward  int64     `yaml:"xp_reward"`
	Criterion Criterion `yaml:"criteria"`
}

// DailyChallenge is a dated challenge, optionally tied to a lesson.
type DailyChallenge struct {
	ID         string     `yaml:"id"`
	Date       string     `yaml:"date"` // YYYY-MM-DD
	Discipline Discipline `yaml:"discipline,omitempty"`
	LessonID   string     `yaml:"lesson,omitempty"`
	Title      string     `yaml:"title"`
	XPReward   int64      `yaml:"xp_reward"`
}

// DateLayout is the layout of DailyChallenge.Date.
const DateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Day returns the challenge date as midnight UTC.
func (c DailyChallenge) Day() (time.Time, error) {
	return parseDate(c.Date)
}
