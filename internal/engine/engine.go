// Package engine is the discipline-parameterized progression engine. It
// reads snapshots from the catalog store, runs them through the progress,
// unlock, achievement, XP and ranking rules, and performs the few writes
// that learner actions cause.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/achievements"
	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/ranking"
	"github.com/abhisek/curriculum/internal/store"
	"github.com/abhisek/curriculum/internal/unlock"
	"github.com/abhisek/curriculum/internal/xp"
)

var (
	// ErrLessonLocked is returned when progress is written for a lesson
	// whose module is locked for the learner.
	ErrLessonLocked = errors.New("lesson is locked")

	// ErrUnknownLesson is returned for lesson ids not in the catalog.
	ErrUnknownLesson = errors.New("unknown lesson")

	// ErrUnknownChallenge is returned for challenge ids not in the catalog.
	ErrUnknownChallenge = errors.New("unknown challenge")
)

// Catalog is the store surface the engine depends on.
type Catalog interface {
	ListDisciplines(ctx context.Context) ([]content.Discipline, error)
	ListModules(ctx context.Context, discipline content.Discipline) ([]content.Module, error)
	GetModule(ctx context.Context, id string) (content.Module, error)
	GetLesson(ctx context.Context, id string) (content.Lesson, error)
	ListUserLessonProgress(ctx context.Context, userID string, lessonIDs []string) ([]progress.LessonProgress, error)
	GetSkillTree(ctx context.Context, discipline content.Discipline) ([]content.SkillNode, error)
	ListUserSkillProgress(ctx context.Context, userID string, nodeIDs []string) ([]progress.SkillProgress, error)
	ListAchievementTypes(ctx context.Context, categories ...string) ([]content.AchievementType, error)
	ListUserAchievements(ctx context.Context, userID string, typeIDs []string) ([]achievements.Earned, error)
	GetDailyChallenge(ctx context.Context, discipline content.Discipline, date string) (content.DailyChallenge, error)
	GetChallenge(ctx context.Context, id string) (content.DailyChallenge, error)
	CountChallengeAttempts(ctx context.Context, userID string) (int, error)
	Standings(ctx context.Context, scope ranking.Scope) ([]ranking.Standing, error)
	GetProfile(ctx context.Context, userID string) (xp.Profile, error)

	UpsertLessonProgress(ctx context.Context, p progress.LessonProgress) (progress.LessonProgress, error)
	UpsertSkillProgress(ctx context.Context, p progress.SkillProgress) (progress.SkillProgress, error)
	RecordChallengeAttempt(ctx context.Context, a store.ChallengeAttempt, reward *xp.Transaction) (bool, error)

	xp.Ledger
	achievements.Awarder
}

// Engine runs the progression rules over a Catalog.
type Engine struct {
	catalog      Catalog
	xp           *xp.Service
	achievements *achievements.Service
	log          *zap.Logger
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over catalog using curve for levels.
func New(catalog Catalog, curve xp.Curve, opts ...Option) *Engine {
	e := &Engine{catalog: catalog, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.xp = xp.NewService(catalog, curve, e.log.Named("xp"))
	e.xp.Now = e.now
	e.achievements = achievements.NewService(catalog, e.xp, e.log.Named("achievements"))
	return e
}

// today is the current UTC date in content.DateLayout.
func (e *Engine) today() string {
	return e.now().UTC().Format(content.DateLayout)
}

// logIssues reports malformed content for authors. It is never returned to
// learners.
func (e *Engine) logIssues(kind string, disciplines []content.Discipline, issues []unlock.Issue) {
	if len(issues) == 0 {
		return
	}
	names := make([]string, len(disciplines))
	for i, d := range disciplines {
		names[i] = string(d)
	}
	for _, is := range issues {
		e.log.Warn("malformed content",
			zap.String("graph", kind),
			zap.String("discipline", strings.Join(names, ",")),
			zap.String("issue", string(is.Kind)),
			zap.String("node_id", is.NodeID),
			zap.String("ref", is.Ref))
	}
}
