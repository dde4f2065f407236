// Package progress rolls per-lesson completion records up into module and
// discipline percentages.
package progress

import (
	"math"
	"time"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/unlock"
)

// Status is a learner's status on one lesson.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// LessonProgress is the single progress row a learner has for a lesson.
type LessonProgress struct {
	UserID               string
	LessonID             string
	CompletionPercentage int
	Status               Status
	CompletedAt          *time.Time
}

// SkillProgress is the single progress row a learner has for a skill node.
type SkillProgress struct {
	UserID   string
	NodeID   string
	Status   unlock.State
	EarnedAt *time.Time
}

// Normalize clamps the completion percentage to [0, 100] and derives the
// status from it, so that status is completed exactly when completion is 100.
func Normalize(p LessonProgress) LessonProgress {
	p.CompletionPercentage = min(max(p.CompletionPercentage, 0), 100)
	switch {
	case p.CompletionPercentage == 100:
		p.Status = StatusCompleted
	case p.CompletionPercentage > 0 || p.Status == StatusInProgress || p.Status == StatusCompleted:
		// A status claiming more than the percentage shows is only "started".
		p.Status = StatusInProgress
	default:
		p.Status = StatusNotStarted
	}
	if p.Status != StatusCompleted {
		p.CompletedAt = nil
	}
	return p
}

// Completed reports whether the row records a finished lesson.
func (p LessonProgress) Completed() bool {
	return Normalize(p).Status == StatusCompleted
}

// Percent returns round(100 × completed / total), or 0 when total is 0.
// An incomplete set never rounds up to 100.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	completed = min(max(completed, 0), total)
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct == 100 && completed < total {
		// 100 is reserved for a fully completed set.
		return 99
	}
	return pct
}

// Summary is the rolled-up progress of one module.
type Summary struct {
	ModuleID         string
	Progress         int
	LessonsCount     int
	CompletedLessons int
	Started          bool
}

// Index maps lesson id to the learner's progress row. Later rows for the
// same lesson replace earlier ones.
func Index(rows []LessonProgress) map[string]LessonProgress {
	idx := make(map[string]LessonProgress, len(rows))
	for _, r := range rows {
		idx[r.LessonID] = Normalize(r)
	}
	return idx
}

// Module rolls the learner's lesson rows up into the module's progress.
// Only lessons listed by the module count; a module without lessons is 0%.
func Module(m content.Module, rows map[string]LessonProgress) Summary {
	s := Summary{ModuleID: m.ID}
	seen := make(map[string]bool, len(m.LessonIDs))
	for _, id := range m.LessonIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s.LessonsCount++

		row, ok := rows[id]
		if !ok {
			continue
		}
		if row.Status == StatusCompleted {
			s.CompletedLessons++
		}
		if row.Status != StatusNotStarted {
			s.Started = true
		}
	}
	s.Progress = Percent(s.CompletedLessons, s.LessonsCount)
	return s
}

// Modules summarizes every module, keyed by module id.
func Modules(modules []content.Module, rows map[string]LessonProgress) map[string]Summary {
	out := make(map[string]Summary, len(modules))
	for _, m := range modules {
		out[m.ID] = Module(m, rows)
	}
	return out
}

// Discipline returns the share of completed lessons across all modules of a
// discipline. Modules without lessons contribute nothing.
func Discipline(modules []content.Module, rows map[string]LessonProgress) int {
	completed, total := 0, 0
	for _, m := range modules {
		s := Module(m, rows)
		completed += s.CompletedLessons
		total += s.LessonsCount
	}
	return Percent(completed, total)
}

// CompletedModules returns the ids of modules at 100%, in input order.
func CompletedModules(modules []content.Module, rows map[string]LessonProgress) []string {
	var ids []string
	for _, m := range modules {
		if Module(m, rows).Progress == 100 {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Record converts a summary into the unlock resolver's view of the module.
func (s Summary) Record() unlock.Record {
	return unlock.Record{
		Started:   s.Started || s.CompletedLessons > 0,
		Completed: s.LessonsCount > 0 && s.Progress == 100,
	}
}
