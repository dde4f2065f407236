package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/store"
	"github.com/abhisek/curriculum/internal/unlock"
	"github.com/abhisek/curriculum/internal/xp"
)

// Outcome reports what a learner action changed.
type Outcome struct {
	// Skipped is set for anonymous learners; nothing was written.
	Skipped bool

	// Repeat is set when the action had already been recorded and granted
	// nothing new.
	Repeat bool

	Lesson       progress.LessonProgress
	XPAwarded    int64
	SkillNodes   []string
	Achievements []string
	Profile      xp.Profile
}

// StartLesson marks a lesson in progress. Linked skill nodes that are open
// move to in progress too.
func (e *Engine) StartLesson(ctx context.Context, userID, lessonID string) (Outcome, error) {
	return e.recordLesson(ctx, userID, lessonID, progress.LessonProgress{Status: progress.StatusInProgress})
}

// CompleteLesson records a completion percentage for a lesson. Reaching 100
// completes the lesson, awards its XP once and completes the linked skill
// nodes that are unlocked. Lower percentages never undo a completion.
func (e *Engine) CompleteLesson(ctx context.Context, userID, lessonID string, completion int) (Outcome, error) {
	return e.recordLesson(ctx, userID, lessonID, progress.LessonProgress{CompletionPercentage: completion})
}

func (e *Engine) recordLesson(ctx context.Context, userID, lessonID string, p progress.LessonProgress) (Outcome, error) {
	if userID == "" {
		return Outcome{Skipped: true}, nil
	}

	lesson, err := e.catalog.GetLesson(ctx, lessonID)
	if errors.Is(err, store.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("get lesson: %w", err)
	}
	module, err := e.catalog.GetModule(ctx, lesson.ModuleID)
	if errors.Is(err, store.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%w: %s has no module", ErrUnknownLesson, lessonID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("get module: %w", err)
	}
	d := module.Discipline

	st, err := e.loadModules(ctx, userID, d)
	if err != nil {
		return Outcome{}, err
	}
	if st.res.State(module.ID) == unlock.StateLocked {
		return Outcome{}, fmt.Errorf("%w: %s in module %s", ErrLessonLocked, lessonID, module.ID)
	}
	before := st.lessons[lessonID]

	p.UserID = userID
	p.LessonID = lessonID
	row, err := e.catalog.UpsertLessonProgress(ctx, p)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Lesson: row}
	completed := row.Status == progress.StatusCompleted
	out.Repeat = completed && before.Status == progress.StatusCompleted

	if completed && lesson.XPReward > 0 {
		_, applied, err := e.xp.Award(ctx, userID, lesson.XPReward, xp.SourceLesson, lesson.ID)
		if err != nil {
			return out, err
		}
		if applied {
			out.XPAwarded = lesson.XPReward
		}
	}

	target := unlock.StateInProgress
	if completed {
		target = unlock.StateCompleted
	}
	out.SkillNodes, err = e.advanceSkills(ctx, userID, d, lessonID, target)
	if err != nil {
		return out, err
	}

	return e.finish(ctx, userID, d, out)
}

// advanceSkills moves the open skill nodes linked to a lesson to target and
// returns the ids that changed. Locked nodes are left alone.
func (e *Engine) advanceSkills(ctx context.Context, userID string, d content.Discipline, lessonID string, target unlock.State) ([]string, error) {
	prof, err := e.xp.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	st, err := e.loadSkills(ctx, userID, prof.TotalXP, d)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, n := range st.nodes {
		if n.LessonID != lessonID {
			continue
		}
		switch state := st.res.State(n.ID); {
		case state == unlock.StateLocked:
			e.log.Debug("skill node locked, not advanced",
				zap.String("user_id", userID),
				zap.String("node_id", n.ID))
			continue
		case state == unlock.StateCompleted, state == target:
			continue
		}
		if _, err := e.catalog.UpsertSkillProgress(ctx, progress.SkillProgress{
			UserID: userID,
			NodeID: n.ID,
			Status: target,
		}); err != nil {
			return changed, err
		}
		changed = append(changed, n.ID)
	}
	return changed, nil
}

// finish syncs achievements and refreshes the cached profile after a write.
func (e *Engine) finish(ctx context.Context, userID string, d content.Discipline, out Outcome) (Outcome, error) {
	var err error
	out.Achievements, err = e.syncAchievements(ctx, userID, d)
	if err != nil {
		return out, err
	}
	out.Profile, err = e.xp.Refresh(ctx, userID)
	if err != nil {
		return out, err
	}
	return out, nil
}

// AttemptChallenge records a scored attempt at a daily challenge. The XP
// earned is the challenge reward scaled by the score (0..100). Each
// challenge is rewarded once per learner.
func (e *Engine) AttemptChallenge(ctx context.Context, userID, challengeID string, score int) (Outcome, error) {
	if userID == "" {
		return Outcome{Skipped: true}, nil
	}

	c, err := e.catalog.GetChallenge(ctx, challengeID)
	if errors.Is(err, store.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownChallenge, challengeID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("get challenge: %w", err)
	}

	score = min(max(score, 0), 100)
	earned := c.XPReward * int64(score) / 100

	var reward *xp.Transaction
	if earned > 0 {
		tx, err := e.xp.NewTransaction(userID, earned, xp.SourceDailyChallenge, c.ID)
		if err != nil {
			return Outcome{}, err
		}
		reward = &tx
	}

	applied, err := e.catalog.RecordChallengeAttempt(ctx, store.ChallengeAttempt{
		UserID:      userID,
		ChallengeID: c.ID,
		Score:       score,
		XPEarned:    earned,
		CompletedAt: e.now().UTC(),
	}, reward)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Repeat: !applied}
	if applied {
		out.XPAwarded = earned
		e.log.Info("challenge attempted",
			zap.String("user_id", userID),
			zap.String("challenge_id", c.ID),
			zap.Int("score", score),
			zap.Int64("xp", earned))
	}
	return e.finish(ctx, userID, c.Discipline, out)
}

// SyncAchievements awards every achievement of the discipline and every
// global achievement the learner now meets. It returns the newly awarded ids
// and refreshes the cached profile when any reward was granted.
func (e *Engine) SyncAchievements(ctx context.Context, userID string, d content.Discipline) ([]string, error) {
	awarded, err := e.syncAchievements(ctx, userID, d)
	if len(awarded) > 0 {
		if _, rerr := e.xp.Refresh(ctx, userID); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return awarded, err
}

func (e *Engine) syncAchievements(ctx context.Context, userID string, d content.Discipline) ([]string, error) {
	if userID == "" {
		return nil, nil
	}
	types, err := e.catalog.ListAchievementTypes(ctx, string(d), content.CategoryGlobal)
	if err != nil {
		return nil, fmt.Errorf("list achievement types: %w", err)
	}
	recorded, err := e.recorded(ctx, userID, types)
	if err != nil {
		return nil, err
	}
	own, global := achievementScopes(types, d)

	var awarded []string
	var errs []error
	if len(own) > 0 {
		snap, err := e.snapshot(ctx, userID, []content.Discipline{d})
		if err != nil {
			return nil, err
		}
		ids, err := e.achievements.Sync(ctx, userID, own, snap, recorded)
		awarded = append(awarded, ids...)
		errs = append(errs, err)
	}
	// Global types see the XP just granted above.
	if len(global) > 0 {
		snap, err := e.globalSnapshot(ctx, userID)
		if err != nil {
			return awarded, errors.Join(append(errs, err)...)
		}
		ids, err := e.achievements.Sync(ctx, userID, global, snap, recorded)
		awarded = append(awarded, ids...)
		errs = append(errs, err)
	}
	return awarded, errors.Join(errs...)
}
