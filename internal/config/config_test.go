package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/xp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.LogMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "aerospace", cfg.Discipline)
	assert.Equal(t, 10, cfg.LeaderboardLimit)
	assert.Equal(t, int64(xp.DefaultStep), cfg.LevelStep)
	assert.Empty(t, cfg.LevelThresholds)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CURRICULUM_DB", "/tmp/c.db")
	t.Setenv("CURRICULUM_LOG_MODE", "prod")
	t.Setenv("CURRICULUM_DISCIPLINE", " electrical ")
	t.Setenv("CURRICULUM_LEVEL_THRESHOLDS", "10,20,40")
	t.Setenv("CURRICULUM_LEVEL_STEP", "0")
	t.Setenv("CURRICULUM_LEADERBOARD_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c.db", cfg.DBPath)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, "electrical", string(cfg.DefaultDiscipline()))
	assert.Equal(t, []int64{10, 20, 40}, cfg.LevelThresholds)
	assert.Equal(t, 25, cfg.LeaderboardLimit)

	curve := cfg.Curve(zap.NewNop())
	assert.Equal(t, 4, curve.Level(40))
	assert.Equal(t, 4, curve.Level(1_000_000))
}

func TestLoadError(t *testing.T) {
	t.Setenv("CURRICULUM_LEADERBOARD_LIMIT", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestCurveFallsBackOnInvalidThresholds(t *testing.T) {
	cfg := Default()
	cfg.LevelThresholds = []int64{100, 50}

	curve := cfg.Curve(zap.NewNop())
	assert.Equal(t, xp.DefaultThresholds, curve.Thresholds())
}

func TestCurveDefault(t *testing.T) {
	curve := Default().Curve(nil)
	assert.Equal(t, xp.DefaultCurve().Thresholds(), curve.Thresholds())
}
