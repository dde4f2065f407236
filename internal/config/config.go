// Package config loads runtime settings from CURRICULUM_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/xp"
)

// Config is the process configuration. Command-line flags override it.
type Config struct {
	DBPath           string  `env:"CURRICULUM_DB"`
	LogMode          string  `env:"CURRICULUM_LOG_MODE"          envDefault:"dev"`
	LogLevel         string  `env:"CURRICULUM_LOG_LEVEL"         envDefault:"info"`
	LevelThresholds  []int64 `env:"CURRICULUM_LEVEL_THRESHOLDS"  envSeparator:","`
	LevelStep        int64   `env:"CURRICULUM_LEVEL_STEP"        envDefault:"5000"`
	Discipline       string  `env:"CURRICULUM_DISCIPLINE"        envDefault:"aerospace"`
	LeaderboardLimit int     `env:"CURRICULUM_LEADERBOARD_LIMIT" envDefault:"10"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Discipline = strings.TrimSpace(cfg.Discipline)
	if cfg.LeaderboardLimit < 0 {
		cfg.LeaderboardLimit = 0
	}
	return cfg, nil
}

// Default returns the configuration used when the environment cannot be parsed.
func Default() Config {
	return Config{
		LogMode:          "dev",
		LogLevel:         "info",
		LevelStep:        xp.DefaultStep,
		Discipline:       "aerospace",
		LeaderboardLimit: 10,
	}
}

// DefaultDiscipline returns the configured discipline.
func (c Config) DefaultDiscipline() content.Discipline {
	return content.Discipline(c.Discipline)
}

// Curve builds the level curve. An invalid curve is content misconfiguration:
// it is logged and the built-in curve is used instead.
func (c Config) Curve(log *zap.Logger) xp.Curve {
	if len(c.LevelThresholds) == 0 {
		if c.LevelStep == xp.DefaultStep {
			return xp.DefaultCurve()
		}
		c.LevelThresholds = xp.DefaultThresholds
	}
	curve, err := xp.NewCurve(c.LevelThresholds, c.LevelStep)
	if err != nil {
		if log != nil {
			log.Warn("invalid level curve, using default",
				zap.Int64s("thresholds", c.LevelThresholds),
				zap.Int64("step", c.LevelStep),
				zap.Error(err))
		}
		return xp.DefaultCurve()
	}
	return curve
}
