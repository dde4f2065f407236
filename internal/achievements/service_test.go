package achievements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/xp"
)

// mockAwarder enforces (user, achievement) uniqueness in memory.
type mockAwarder struct {
	rows map[string]bool
	xp   []xp.Transaction
	fail map[string]error
}

func (m *mockAwarder) AwardAchievementIfUnearned(_ context.Context, a Award) (bool, error) {
	if err := m.fail[a.AchievementID]; err != nil {
		return false, err
	}
	if m.rows == nil {
		m.rows = make(map[string]bool)
	}
	key := a.UserID + "/" + a.AchievementID
	if m.rows[key] {
		return false, nil
	}
	m.rows[key] = true
	if a.XP != nil {
		m.xp = append(m.xp, *a.XP)
	}
	return true, nil
}

func newTestService(aw Awarder) *Service {
	return NewService(aw, xp.NewService(nil, xp.DefaultCurve(), nil), nil)
}

func fiveLessons() content.AchievementType {
	return content.AchievementType{
		ID:        "aero-five",
		Category:  "aerospace",
		Tier:      content.TierSilver,
		XPReward:  75,
		Criterion: content.Criterion{Type: content.CriterionLessonCount, Count: 5},
	}
}

func TestSync_AwardsOnceWithSingleXPTransaction(t *testing.T) {
	aw := &mockAwarder{}
	svc := newTestService(aw)
	ctx := context.Background()
	types := []content.AchievementType{fiveLessons()}

	got, err := svc.Sync(ctx, "u1", types, Snapshot{LessonsCompleted: 2}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, aw.xp)

	got, err = svc.Sync(ctx, "u1", types, Snapshot{LessonsCompleted: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"aero-five"}, got)

	// Evaluator runs again without knowing about the recorded row.
	got, err = svc.Sync(ctx, "u1", types, Snapshot{LessonsCompleted: 5}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.Len(t, aw.xp, 1)
	assert.Equal(t, int64(75), aw.xp[0].Amount)
	assert.Equal(t, xp.SourceAchievement, aw.xp[0].Source)
	assert.Equal(t, "aero-five", aw.xp[0].ReferenceID)
}

func TestSync_SkipsRecordedAndUnknown(t *testing.T) {
	aw := &mockAwarder{}
	svc := newTestService(aw)

	unknown := content.AchievementType{ID: "odd", Criterion: content.Criterion{Type: "mystery", Count: 1}}
	types := []content.AchievementType{fiveLessons(), unknown}

	got, err := svc.Sync(context.Background(), "u1", types, Snapshot{LessonsCompleted: 9}, map[string]bool{"aero-five": true})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, aw.rows)
}

func TestSync_ZeroRewardWritesNoXP(t *testing.T) {
	aw := &mockAwarder{}
	svc := newTestService(aw)

	a := fiveLessons()
	a.XPReward = 0
	got, err := svc.Sync(context.Background(), "u1", []content.AchievementType{a}, Snapshot{LessonsCompleted: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"aero-five"}, got)
	assert.Empty(t, aw.xp)
}

func TestSync_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	aw := &mockAwarder{fail: map[string]error{"aero-five": boom}}
	svc := newTestService(aw)

	other := fiveLessons()
	other.ID = "aero-five-b"
	got, err := svc.Sync(context.Background(), "u1", []content.AchievementType{fiveLessons(), other}, Snapshot{LessonsCompleted: 5}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"aero-five-b"}, got)
}
