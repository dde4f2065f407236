package xp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLedger implements Ledger in memory.
type mockLedger struct {
	txs      []Transaction
	profiles map[string]Profile
	failList error
}

func (m *mockLedger) RecordXPTransaction(_ context.Context, tx Transaction) (bool, error) {
	for _, existing := range m.txs {
		if existing.UserID == tx.UserID && existing.Source == tx.Source && existing.ReferenceID == tx.ReferenceID {
			return false, nil
		}
	}
	tx.Sequence = int64(len(m.txs) + 1)
	m.txs = append(m.txs, tx)
	return true, nil
}

func (m *mockLedger) ListXPTransactions(_ context.Context, userID string) ([]Transaction, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	var out []Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockLedger) SaveProfile(_ context.Context, p Profile) error {
	if m.profiles == nil {
		m.profiles = make(map[string]Profile)
	}
	m.profiles[p.UserID] = p
	return nil
}

func newTestService(ledger Ledger) *Service {
	svc := NewService(ledger, DefaultCurve(), nil)
	svc.Now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_AwardRejectsNonPositive(t *testing.T) {
	ledger := &mockLedger{}
	svc := newTestService(ledger)

	for _, amount := range []int64{0, -10} {
		_, applied, err := svc.Award(context.Background(), "u1", amount, SourceBonus, "x")
		require.ErrorIs(t, err, ErrNonPositiveAmount)
		assert.False(t, applied)
	}
	assert.Empty(t, ledger.txs)
}

func TestService_AwardIsIdempotentPerReference(t *testing.T) {
	ledger := &mockLedger{}
	svc := newTestService(ledger)
	ctx := context.Background()

	tx, applied, err := svc.Award(ctx, "u1", 50, SourceLesson, "aero-l1")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NotEmpty(t, tx.ID)

	_, applied, err = svc.Award(ctx, "u1", 50, SourceLesson, "aero-l1")
	require.NoError(t, err)
	assert.False(t, applied)

	_, applied, err = svc.Award(ctx, "u1", 50, SourceDailyChallenge, "aero-l1")
	require.NoError(t, err)
	assert.True(t, applied, "different source is a different award")

	p, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.TotalXP)
	assert.Equal(t, 2, p.Level)
}

func TestService_Refresh(t *testing.T) {
	ledger := &mockLedger{}
	svc := newTestService(ledger)
	ctx := context.Background()

	_, _, err := svc.Award(ctx, "u1", 120, SourceLesson, "l1")
	require.NoError(t, err)

	p, err := svc.Refresh(ctx, "u1")
	require.NoError(t, err)

	saved, ok := ledger.profiles["u1"]
	require.True(t, ok)
	assert.Equal(t, p, saved)
	assert.Equal(t, int64(120), saved.TotalXP)
	assert.Equal(t, 1, saved.StreakDays)
	assert.Equal(t, int64(250), saved.NextLevelXP)
}

func TestService_Current(t *testing.T) {
	svc := newTestService(&mockLedger{})
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		last       time.Time
		wantStreak int
	}{
		{"active today", day(18), 4},
		{"active yesterday", day(17), 4},
		{"lapsed", day(16), 0},
		{"never active", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cached := Profile{UserID: "u1", TotalXP: 260, Level: 1, StreakDays: 4, LongestStreak: 6, LastActivityDate: tt.last}
			got := svc.Current(cached)
			assert.Equal(t, tt.wantStreak, got.StreakDays)
			assert.Equal(t, 6, got.LongestStreak)
			assert.Equal(t, 3, got.Level)
			assert.Equal(t, int64(500), got.NextLevelXP)
		})
	}
}

func TestService_ProfileListError(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&mockLedger{failList: boom})

	_, err := svc.Profile(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestRecompute_TotalEqualsLedgerSum(t *testing.T) {
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Amount: 10, Source: SourceLesson, CreatedAt: base},
		{Amount: 25, Source: SourceAchievement, CreatedAt: base.Add(24 * time.Hour)},
		{Amount: 40, Source: SourceLesson, CreatedAt: base.Add(48 * time.Hour)},
	}
	p := Recompute("u1", txs, DefaultCurve(), base.Add(48*time.Hour))
	assert.Equal(t, int64(75), p.TotalXP)
	assert.Equal(t, 3, p.StreakDays)
	assert.Equal(t, 3, p.LongestStreak)
	assert.Equal(t, map[Source]int64{SourceLesson: 50, SourceAchievement: 25}, TotalsBySource(txs))
}
