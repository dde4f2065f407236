package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/curriculum/internal/content"
)

func TestImportCatalog_Modules(t *testing.T) {
	s := openSeededStore(t)
	ctx := context.Background()

	modules, err := s.ListModules(ctx, "aerospace")
	require.NoError(t, err)
	require.Len(t, modules, 3)

	assert.Equal(t, "aero-fundamentals", modules[0].ID)
	assert.Equal(t, []string{"aero-l1", "aero-l2", "aero-l3", "aero-l4"}, modules[0].LessonIDs)
	assert.Empty(t, modules[0].Prerequisites)
	assert.Equal(t, []string{"aero-fundamentals", "aero-propulsion"}, modules[2].Prerequisites)

	other, err := s.ListModules(ctx, "electrical")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, content.Discipline("electrical"), other[0].Discipline)

	none, err := s.ListModules(ctx, "mechanical")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestImportCatalog_Lessons(t *testing.T) {
	s := openSeededStore(t)
	ctx := context.Background()

	lessons, err := s.ListLessonsForModules(ctx, []string{"aero-propulsion"})
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "aero-l5", lessons[0].ID)
	assert.Equal(t, int64(75), lessons[0].XPReward)

	l, err := s.GetLesson(ctx, "aero-l7")
	require.NoError(t, err)
	assert.Equal(t, "aero-orbital", l.ModuleID)

	_, err = s.GetLesson(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	m, err := s.GetModule(ctx, "aero-orbital")
	require.NoError(t, err)
	assert.Equal(t, []string{"aero-l7"}, m.LessonIDs)

	_, err = s.GetModule(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportCatalog_SkillTreeAndAchievements(t *testing.T) {
	s := openSeededStore(t)
	ctx := context.Background()

	nodes, err := s.GetSkillTree(ctx, "aerospace")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, content.TierSilver, nodes[1].Tier)
	assert.True(t, nodes[1].IsMilestone)
	assert.Equal(t, []string{"aero-s-lift"}, nodes[1].Prerequisites)
	assert.Equal(t, "aero-l5", nodes[2].LessonID)
	assert.Equal(t, int64(300), nodes[2].XPRequired)

	types, err := s.ListAchievementTypes(ctx, "aerospace")
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, content.CriterionLessonCount, types[0].Criterion.Type)
	assert.Equal(t, 5, types[0].Criterion.Count)
	assert.Equal(t, "aero-fundamentals", types[1].Criterion.PathID)

	all, err := s.ListAchievementTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	global, err := s.ListAchievementTypes(ctx, content.CategoryGlobal)
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, int64(1000), global[1].Criterion.XP)
}

func TestImportCatalog_Replaces(t *testing.T) {
	s := openSeededStore(t)
	ctx := context.Background()

	c := &content.Catalog{
		SchemaVersion: "v1.0.0",
		Modules:       []content.Module{{ID: "m1", Discipline: "aerospace", LessonIDs: []string{"l1"}}},
		Lessons:       []content.Lesson{{ID: "l1", ModuleID: "m1", XPReward: 10}},
	}
	require.NoError(t, s.ImportCatalog(ctx, c))

	modules, err := s.ListModules(ctx, "aerospace")
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "m1", modules[0].ID)

	nodes, err := s.GetSkillTree(ctx, "aerospace")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestDailyChallenge(t *testing.T) {
	s := openSeededStore(t)
	ctx := context.Background()

	ch, err := s.GetDailyChallenge(ctx, "aerospace", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, "dc-2026-10-18", ch.ID)
	assert.Equal(t, "aero-l2", ch.LessonID)

	_, err = s.GetDailyChallenge(ctx, "electrical", "2026-10-18")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetDailyChallenge(ctx, "aerospace", "2026-10-19")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := s.GetChallenge(ctx, "dc-2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, int64(30), byID.XPReward)
}

func TestListDisciplines(t *testing.T) {
	s := openSeededStore(t)

	got, err := s.ListDisciplines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.Discipline{"aerospace", "electrical"}, got)
}
