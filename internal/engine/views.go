package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/curriculum/internal/achievements"
	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/store"
	"github.com/abhisek/curriculum/internal/unlock"
	"github.com/abhisek/curriculum/internal/xp"
)

// ModuleView is a module as one learner sees it.
type ModuleView struct {
	ID               string
	Title            string
	Progress         int
	IsLocked         bool
	LessonsCount     int
	CompletedLessons int
	State            unlock.State
}

// SkillNodeView is a skill tree node as one learner sees it.
type SkillNodeView struct {
	ID          string
	Title       string
	Tier        content.Tier
	XPRequired  int64
	Status      unlock.State
	IsMilestone bool
}

// AchievementView is an achievement type with the learner's progress on it.
type AchievementView struct {
	ID       string
	Title    string
	Category string
	Tier     content.Tier
	XPReward int64
	IsEarned bool
	Progress int
}

// moduleState is a learner's resolved position in a set of modules. The
// graph may also hold modules of other disciplines that own modules require;
// modules lists only the requested ones.
type moduleState struct {
	modules   []content.Module
	lessons   map[string]progress.LessonProgress
	summaries map[string]progress.Summary
	res       unlock.Resolution
}

func (e *Engine) loadModules(ctx context.Context, userID string, disciplines ...content.Discipline) (moduleState, error) {
	var st moduleState
	for _, d := range disciplines {
		ms, err := e.catalog.ListModules(ctx, d)
		if err != nil {
			return moduleState{}, fmt.Errorf("list modules: %w", err)
		}
		st.modules = append(st.modules, ms...)
	}

	all := st.modules
	g := content.ModuleGraph(all)
	if reachesOut(g, all, func(m content.Module) []string { return m.Prerequisites }) {
		others, err := e.otherDisciplines(ctx, disciplines)
		if err != nil {
			return moduleState{}, err
		}
		all = slices.Clone(st.modules)
		for _, d := range others {
			ms, err := e.catalog.ListModules(ctx, d)
			if err != nil {
				return moduleState{}, fmt.Errorf("list modules: %w", err)
			}
			all = append(all, ms...)
		}
		g = content.ModuleGraph(all)
	}

	var rows []progress.LessonProgress
	if userID != "" {
		var ids []string
		for _, m := range all {
			ids = append(ids, m.LessonIDs...)
		}
		var err error
		rows, err = e.catalog.ListUserLessonProgress(ctx, userID, ids)
		if err != nil {
			return moduleState{}, fmt.Errorf("list lesson progress: %w", err)
		}
	}
	st.lessons = progress.Index(rows)
	st.summaries = progress.Modules(all, st.lessons)

	records := make(map[string]unlock.Record, len(st.summaries))
	for id, s := range st.summaries {
		records[id] = s.Record()
	}
	st.res = unlock.Resolve(g, unlock.Input{
		Records: records,
		Preview: userID == "",
	})
	e.logIssues("modules", disciplines, ownIssues(st.res.Issues, moduleIDs(st.modules)))
	return st, nil
}

func (st moduleState) views() []ModuleView {
	out := make([]ModuleView, 0, len(st.modules))
	for _, m := range st.modules {
		s := st.summaries[m.ID]
		state := st.res.State(m.ID)
		out = append(out, ModuleView{
			ID:               m.ID,
			Title:            m.Title,
			Progress:         s.Progress,
			IsLocked:         state == unlock.StateLocked,
			LessonsCount:     s.LessonsCount,
			CompletedLessons: s.CompletedLessons,
			State:            state,
		})
	}
	return out
}

// ModuleViews returns the modules of a discipline in authored order. An
// empty userID renders the preview.
func (e *Engine) ModuleViews(ctx context.Context, userID string, d content.Discipline) ([]ModuleView, error) {
	st, err := e.loadModules(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	return st.views(), nil
}

// skillState is a learner's resolved position in a set of skill trees. Like
// moduleState, the graph may reach into other disciplines.
type skillState struct {
	nodes []content.SkillNode
	res   unlock.Resolution
}

func (e *Engine) loadSkills(ctx context.Context, userID string, totalXP int64, disciplines ...content.Discipline) (skillState, error) {
	var st skillState
	for _, d := range disciplines {
		nodes, err := e.catalog.GetSkillTree(ctx, d)
		if err != nil {
			return skillState{}, fmt.Errorf("get skill tree: %w", err)
		}
		st.nodes = append(st.nodes, nodes...)
	}

	all := st.nodes
	g := content.SkillGraph(all)
	if reachesOut(g, all, func(n content.SkillNode) []string { return n.Prerequisites }) {
		others, err := e.otherDisciplines(ctx, disciplines)
		if err != nil {
			return skillState{}, err
		}
		all = slices.Clone(st.nodes)
		for _, d := range others {
			nodes, err := e.catalog.GetSkillTree(ctx, d)
			if err != nil {
				return skillState{}, fmt.Errorf("get skill tree: %w", err)
			}
			all = append(all, nodes...)
		}
		g = content.SkillGraph(all)
	}

	records := make(map[string]unlock.Record)
	if userID != "" && len(all) > 0 {
		ids := make([]string, len(all))
		for i, n := range all {
			ids[i] = n.ID
		}
		rows, err := e.catalog.ListUserSkillProgress(ctx, userID, ids)
		if err != nil {
			return skillState{}, fmt.Errorf("list skill progress: %w", err)
		}
		for _, r := range rows {
			records[r.NodeID] = unlock.Record{
				Started:   r.Status == unlock.StateInProgress || r.Status == unlock.StateCompleted,
				Completed: r.Status == unlock.StateCompleted,
			}
		}
	}

	st.res = unlock.Resolve(g, unlock.Input{
		Records: records,
		TotalXP: totalXP,
		Preview: userID == "",
	})
	e.logIssues("skills", disciplines, ownIssues(st.res.Issues, st.ids()))
	return st, nil
}

func (st skillState) ids() []string {
	ids := make([]string, len(st.nodes))
	for i, n := range st.nodes {
		ids[i] = n.ID
	}
	return ids
}

// reachesOut reports whether any item names a prerequisite missing from g.
func reachesOut[T any](g *unlock.Graph, items []T, prereqs func(T) []string) bool {
	for _, it := range items {
		for _, p := range prereqs(it) {
			if !g.Has(p) {
				return true
			}
		}
	}
	return false
}

// otherDisciplines lists every known discipline not in ds.
func (e *Engine) otherDisciplines(ctx context.Context, ds []content.Discipline) ([]content.Discipline, error) {
	all, err := e.catalog.ListDisciplines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list disciplines: %w", err)
	}
	var out []content.Discipline
	for _, d := range all {
		if !slices.Contains(ds, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func moduleIDs(modules []content.Module) []string {
	ids := make([]string, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	return ids
}

// ownIssues keeps the issues raised on the given nodes. Issues of borrowed
// nodes are reported when their own discipline loads.
func ownIssues(issues []unlock.Issue, ids []string) []unlock.Issue {
	var out []unlock.Issue
	for _, is := range issues {
		if slices.Contains(ids, is.NodeID) {
			out = append(out, is)
		}
	}
	return out
}

// SkillTree returns the skill tree of a discipline in authored order.
// Nodes are gated by their prerequisites and the learner's total XP.
func (e *Engine) SkillTree(ctx context.Context, userID string, d content.Discipline) ([]SkillNodeView, error) {
	var total int64
	if userID != "" {
		p, err := e.xp.Profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		total = p.TotalXP
	}
	st, err := e.loadSkills(ctx, userID, total, d)
	if err != nil {
		return nil, err
	}
	out := make([]SkillNodeView, 0, len(st.nodes))
	for _, n := range st.nodes {
		out = append(out, SkillNodeView{
			ID:          n.ID,
			Title:       n.Title,
			Tier:        n.Tier,
			XPRequired:  n.XPRequired,
			Status:      st.res.State(n.ID),
			IsMilestone: n.IsMilestone,
		})
	}
	return out, nil
}

// snapshot aggregates the learner's progress over disciplines. Streak and
// total XP always come from the whole ledger.
func (e *Engine) snapshot(ctx context.Context, userID string, disciplines []content.Discipline) (achievements.Snapshot, error) {
	prof, err := e.xp.Profile(ctx, userID)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	ms, err := e.loadModules(ctx, userID, disciplines...)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	ss, err := e.loadSkills(ctx, userID, prof.TotalXP, disciplines...)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	challenges, err := e.catalog.CountChallengeAttempts(ctx, userID)
	if err != nil {
		return achievements.Snapshot{}, fmt.Errorf("count challenge attempts: %w", err)
	}

	snap := achievements.Snapshot{
		PathProgress:        make(map[string]int, len(ms.summaries)),
		DisciplineProgress:  progress.Discipline(ms.modules, ms.lessons),
		StreakDays:          prof.StreakDays,
		TotalXP:             prof.TotalXP,
		SkillNodesCompleted: ss.res.Count(unlock.StateCompleted, ss.ids()...),
		ChallengesCompleted: challenges,
	}
	for _, m := range ms.modules {
		s := ms.summaries[m.ID]
		snap.PathProgress[m.ID] = s.Progress
		snap.LessonsCompleted += s.CompletedLessons
	}
	return snap, nil
}

// achievementScopes splits types into the discipline's own and the global ones.
func achievementScopes(types []content.AchievementType, d content.Discipline) (own, global []content.AchievementType) {
	for _, a := range types {
		if a.Category == content.CategoryGlobal {
			global = append(global, a)
		} else if a.Category == string(d) {
			own = append(own, a)
		}
	}
	return own, global
}

// Achievements returns the discipline's achievements followed by the global
// ones, each with the learner's progress. Discipline achievements are
// evaluated against that discipline only; global ones against every
// discipline. A recorded achievement stays earned.
func (e *Engine) Achievements(ctx context.Context, userID string, d content.Discipline) ([]AchievementView, error) {
	types, err := e.catalog.ListAchievementTypes(ctx, string(d), content.CategoryGlobal)
	if err != nil {
		return nil, fmt.Errorf("list achievement types: %w", err)
	}
	own, global := achievementScopes(types, d)

	if userID == "" {
		var out []AchievementView
		for _, a := range append(own, global...) {
			out = append(out, achievementView(a, achievements.Status{ID: a.ID}))
		}
		return out, nil
	}

	recorded, err := e.recorded(ctx, userID, types)
	if err != nil {
		return nil, err
	}

	out := make([]AchievementView, 0, len(types))
	if len(own) > 0 {
		snap, err := e.snapshot(ctx, userID, []content.Discipline{d})
		if err != nil {
			return nil, err
		}
		for _, a := range own {
			out = append(out, achievementView(a, achievements.View(a, snap, recorded[a.ID])))
		}
	}
	if len(global) > 0 {
		snap, err := e.globalSnapshot(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, a := range global {
			out = append(out, achievementView(a, achievements.View(a, snap, recorded[a.ID])))
		}
	}
	return out, nil
}

func (e *Engine) globalSnapshot(ctx context.Context, userID string) (achievements.Snapshot, error) {
	all, err := e.catalog.ListDisciplines(ctx)
	if err != nil {
		return achievements.Snapshot{}, fmt.Errorf("list disciplines: %w", err)
	}
	return e.snapshot(ctx, userID, all)
}

func (e *Engine) recorded(ctx context.Context, userID string, types []content.AchievementType) (map[string]bool, error) {
	ids := make([]string, len(types))
	for i, a := range types {
		ids[i] = a.ID
	}
	rows, err := e.catalog.ListUserAchievements(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	return achievements.Recorded(rows), nil
}

func achievementView(a content.AchievementType, s achievements.Status) AchievementView {
	return AchievementView{
		ID:       a.ID,
		Title:    a.Title,
		Category: a.Category,
		Tier:     a.Tier,
		XPReward: a.XPReward,
		IsEarned: s.IsEarned,
		Progress: s.Progress,
	}
}

// Profile returns the learner's cached profile, brought up to date with the
// current day and level curve. A learner with no cached row is recomputed
// from the ledger. The anonymous learner gets an empty level 1 profile.
func (e *Engine) Profile(ctx context.Context, userID string) (xp.Profile, error) {
	if userID == "" {
		return xp.Recompute("", nil, e.xp.Curve(), e.now()), nil
	}
	p, err := e.catalog.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return e.xp.Refresh(ctx, userID)
	}
	if err != nil {
		return xp.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return e.xp.Current(p), nil
}

// XPBySource splits the learner's total XP by what granted it.
func (e *Engine) XPBySource(ctx context.Context, userID string) (map[xp.Source]int64, error) {
	if userID == "" {
		return map[xp.Source]int64{}, nil
	}
	txs, err := e.catalog.ListXPTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list xp transactions: %w", err)
	}
	return xp.TotalsBySource(txs), nil
}
