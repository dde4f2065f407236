package engine

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/store"
	"github.com/abhisek/curriculum/internal/xp"
)

// Subsystem names reported in Dashboard.Degraded.
const (
	SubsystemModules      = "modules"
	SubsystemSkills       = "skills"
	SubsystemAchievements = "achievements"
	SubsystemChallenge    = "challenge"
	SubsystemProfile      = "profile"
)

// Dashboard is everything one learner sees for one discipline. A subsystem
// that failed to load is empty and listed in Degraded.
type Dashboard struct {
	UserID       string
	Discipline   content.Discipline
	Modules      []ModuleView
	Skills       []SkillNodeView
	Achievements []AchievementView
	Challenge    *content.DailyChallenge
	Profile      xp.Profile
	Degraded     []string
}

// Dashboard loads every subsystem concurrently. Failures are isolated: one
// subsystem failing never empties another.
func (e *Engine) Dashboard(ctx context.Context, userID string, d content.Discipline) Dashboard {
	var (
		modules   Result[[]ModuleView]
		skills    Result[[]SkillNodeView]
		achieved  Result[[]AchievementView]
		challenge Result[*content.DailyChallenge]
		profile   Result[xp.Profile]
	)

	var g errgroup.Group
	g.Go(func() error {
		modules = fetch(ctx, e.log, SubsystemModules, func(ctx context.Context) ([]ModuleView, error) {
			return e.ModuleViews(ctx, userID, d)
		})
		return nil
	})
	g.Go(func() error {
		skills = fetch(ctx, e.log, SubsystemSkills, func(ctx context.Context) ([]SkillNodeView, error) {
			return e.SkillTree(ctx, userID, d)
		})
		return nil
	})
	g.Go(func() error {
		achieved = fetch(ctx, e.log, SubsystemAchievements, func(ctx context.Context) ([]AchievementView, error) {
			return e.Achievements(ctx, userID, d)
		})
		return nil
	})
	g.Go(func() error {
		challenge = fetch(ctx, e.log, SubsystemChallenge, func(ctx context.Context) (*content.DailyChallenge, error) {
			return e.DailyChallenge(ctx, d)
		})
		return nil
	})
	g.Go(func() error {
		profile = fetch(ctx, e.log, SubsystemProfile, func(ctx context.Context) (xp.Profile, error) {
			return e.Profile(ctx, userID)
		})
		return nil
	})
	_ = g.Wait()

	dash := Dashboard{
		UserID:       userID,
		Discipline:   d,
		Modules:      modules.Or(nil),
		Skills:       skills.Or(nil),
		Achievements: achieved.Or(nil),
		Challenge:    challenge.Or(nil),
		Profile:      profile.Or(xp.Recompute(userID, nil, e.xp.Curve(), e.now())),
	}
	for name, err := range map[string]error{
		SubsystemModules:      modules.Err,
		SubsystemSkills:       skills.Err,
		SubsystemAchievements: achieved.Err,
		SubsystemChallenge:    challenge.Err,
		SubsystemProfile:      profile.Err,
	} {
		if err != nil {
			dash.Degraded = append(dash.Degraded, name)
		}
	}
	sort.Strings(dash.Degraded)
	return dash
}

// DailyChallenge returns today's challenge for the discipline, or nil when
// there is none.
func (e *Engine) DailyChallenge(ctx context.Context, d content.Discipline) (*content.DailyChallenge, error) {
	c, err := e.catalog.GetDailyChallenge(ctx, d, e.today())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
