package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/curriculum/internal/progress"
	"github.com/abhisek/curriculum/internal/unlock"
)

func TestUpsertLessonProgress_NormalizesAndStamps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "u1", LessonID: "l1", CompletionPercentage: 140})
	require.NoError(t, err)
	assert.Equal(t, 100, got.CompletionPercentage)
	assert.Equal(t, progress.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(testNow))
}

func TestUpsertLessonProgress_CompletedIsSticky(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "u1", LessonID: "l1", CompletionPercentage: 40})
	require.NoError(t, err)

	got, err := s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "u1", LessonID: "l1", CompletionPercentage: 20})
	require.NoError(t, err)
	assert.Equal(t, 40, got.CompletionPercentage, "completion never decreases")
	assert.Equal(t, progress.StatusInProgress, got.Status)

	got, err = s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "u1", LessonID: "l1", CompletionPercentage: 100})
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, got.Status)
	first := *got.CompletedAt

	got, err = s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "u1", LessonID: "l1", Status: progress.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, 100, got.CompletionPercentage)
	assert.Equal(t, progress.StatusCompleted, got.Status)
	assert.True(t, got.CompletedAt.Equal(first))
}

func TestUpsertLessonProgress_StartOnly(t *testing.T) {
	s := openTestStore(t)

	got, err := s.UpsertLessonProgress(context.Background(), progress.LessonProgress{UserID: "u1", LessonID: "l1", Status: progress.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, 0, got.CompletionPercentage)
	assert.Equal(t, progress.StatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestUpsertLessonProgress_ConcurrentSameKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpsertLessonProgress(ctx, progress.LessonProgress{UserID: "U", LessonID: "L7", CompletionPercentage: 100})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM lesson_progress WHERE user_id = 'U' AND lesson_id = 'L7'`).Scan(&n))
	assert.Equal(t, 1, n)

	rows, err := s.ListUserLessonProgress(ctx, "U", []string{"L7"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, progress.StatusCompleted, rows[0].Status)
}

func TestListUserLessonProgress_FiltersByUserAndLesson(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []progress.LessonProgress{
		{UserID: "u1", LessonID: "l1", CompletionPercentage: 100},
		{UserID: "u1", LessonID: "l2", CompletionPercentage: 50},
		{UserID: "u2", LessonID: "l1", CompletionPercentage: 100},
	} {
		_, err := s.UpsertLessonProgress(ctx, p)
		require.NoError(t, err)
	}

	rows, err := s.ListUserLessonProgress(ctx, "u1", []string{"l1", "l3"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "l1", rows[0].LessonID)

	rows, err = s.ListUserLessonProgress(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpsertSkillProgress_CompletedIsSticky(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.UpsertSkillProgress(ctx, progress.SkillProgress{UserID: "u1", NodeID: "n1", Status: unlock.StateCompleted})
	require.NoError(t, err)
	require.NotNil(t, got.EarnedAt)

	got, err = s.UpsertSkillProgress(ctx, progress.SkillProgress{UserID: "u1", NodeID: "n1", Status: unlock.StateInProgress})
	require.NoError(t, err)
	assert.Equal(t, unlock.StateCompleted, got.Status)
	assert.NotNil(t, got.EarnedAt)

	rows, err := s.ListUserSkillProgress(ctx, "u1", []string{"n1", "n2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unlock.StateCompleted, rows[0].Status)
}
