package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/curriculum/internal/config"
	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/engine"
	"github.com/abhisek/curriculum/internal/logging"
	"github.com/abhisek/curriculum/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "curriculum",
	Short:         "Curriculum progression and unlock engine",
	Long:          "curriculum tracks lesson progress, unlocks modules and skill nodes, awards XP and achievements, and ranks learners.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			cfg = config.Default()
		}
		log, err := logging.New(cfg.LogMode, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		settings = cfg
		logger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	settings = config.Default()
	logger   = zap.NewNop()
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CURRICULUM_DB env var)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Learner id (empty previews the catalog without writing)")
	rootCmd.PersistentFlags().StringP("discipline", "d", "", "Discipline (overrides CURRICULUM_DISCIPLINE env var)")

	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CURRICULUM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if settings.DBPath != "" {
		return settings.DBPath, store.EnsureDir(settings.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveDiscipline returns --discipline, falling back to the configured one.
func resolveDiscipline(cmd *cobra.Command) content.Discipline {
	if d, _ := cmd.Flags().GetString("discipline"); d != "" {
		return content.Discipline(d)
	}
	return settings.DefaultDiscipline()
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}

// openStore opens the database chosen by the flags.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath, store.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// withEngine opens the store, builds an engine over it and runs fn.
func withEngine(cmd *cobra.Command, fn func(e *engine.Engine) error) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	curve := settings.Curve(logger)
	return fn(engine.New(s, curve, engine.WithLogger(logger.Named("engine"))))
}
