package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/curriculum/internal/engine"
	"github.com/abhisek/curriculum/internal/ui/components"
	"github.com/abhisek/curriculum/internal/ui/theme"
	"github.com/abhisek/curriculum/internal/xp"
)

const barWidth = 60

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show modules, skills, achievements, today's challenge and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := resolveDiscipline(cmd)
		return withEngine(cmd, func(e *engine.Engine) error {
			dash := e.Dashboard(cmd.Context(), userFlag(cmd), d)

			fmt.Println(theme.Title.Render(fmt.Sprintf("%s  ·  %s", d, displayUser(dash.UserID))))
			printProfile(dash.Profile)
			fmt.Println()
			printModules(dash.Modules)
			fmt.Println()
			printSkills(dash.Skills)
			fmt.Println()
			printAchievements(dash.Achievements)
			fmt.Println()
			if dash.Challenge != nil {
				c := dash.Challenge
				fmt.Printf("Today's challenge: %s (%s, %d XP)\n", c.Title, c.ID, c.XPReward)
			} else {
				fmt.Println(theme.Hint.Render("No challenge today."))
			}
			if len(dash.Degraded) > 0 {
				fmt.Println(theme.Warning.Render("unavailable: " + strings.Join(dash.Degraded, ", ")))
			}
			return nil
		})
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules of a discipline with progress and lock state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *engine.Engine) error {
			views, err := e.ModuleViews(cmd.Context(), userFlag(cmd), resolveDiscipline(cmd))
			if err != nil {
				return err
			}
			printModules(views)
			return nil
		})
	},
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Show the skill tree of a discipline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *engine.Engine) error {
			views, err := e.SkillTree(cmd.Context(), userFlag(cmd), resolveDiscipline(cmd))
			if err != nil {
				return err
			}
			printSkills(views)
			return nil
		})
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievements and progress toward them",
	RunE: func(cmd *cobra.Command, args []string) error {
		sync, _ := cmd.Flags().GetBool("sync")
		user := userFlag(cmd)
		d := resolveDiscipline(cmd)
		return withEngine(cmd, func(e *engine.Engine) error {
			if sync {
				awarded, err := e.SyncAchievements(cmd.Context(), user, d)
				if err != nil {
					return err
				}
				printAwarded(awarded)
			}
			views, err := e.Achievements(cmd.Context(), user, d)
			if err != nil {
				return err
			}
			printAchievements(views)
			return nil
		})
	},
}

func init() {
	achievementsCmd.Flags().Bool("sync", false, "Award achievements that are met but not yet recorded")
}

func displayUser(id string) string {
	if id == "" {
		return "preview"
	}
	return id
}

func printModules(views []engine.ModuleView) {
	if len(views) == 0 {
		fmt.Println(theme.Hint.Render("No modules."))
		return
	}
	fmt.Println(theme.Subtitle.Render("Modules"))
	for _, v := range views {
		marker := "  "
		if v.IsLocked {
			marker = "🔒"
		}
		label := fmt.Sprintf("%s %-28s %d/%d", marker, truncate(v.Title, 28), v.CompletedLessons, v.LessonsCount)
		bar := components.NewProgressBar(label, v.Progress, true, barWidth).View()
		fmt.Println(bar + "  " + theme.State(v.State).Render(v.State.Label()))
	}
}

func printSkills(views []engine.SkillNodeView) {
	if len(views) == 0 {
		fmt.Println(theme.Hint.Render("No skill nodes."))
		return
	}
	fmt.Println(theme.Subtitle.Render("Skills"))
	for _, v := range views {
		star := " "
		if v.IsMilestone {
			star = "★"
		}
		fmt.Printf("%s %-30s %s  %-10s %s\n",
			star, truncate(v.Title, 30),
			theme.Tier(v.Tier).Render(fmt.Sprintf("%-8s", v.Tier)),
			fmt.Sprintf("%d XP", v.XPRequired),
			theme.State(v.Status).Render(v.Status.Label()))
	}
}

func printAchievements(views []engine.AchievementView) {
	if len(views) == 0 {
		fmt.Println(theme.Hint.Render("No achievements."))
		return
	}
	fmt.Println(theme.Subtitle.Render("Achievements"))
	for _, v := range views {
		mark := "  "
		if v.IsEarned {
			mark = theme.Completed.Render("✓ ")
		}
		label := fmt.Sprintf("%s%-24s %s", mark, truncate(v.Title, 24),
			theme.Tier(v.Tier).Render(fmt.Sprintf("%-8s", v.Tier)))
		fmt.Println(components.NewProgressBar(label, v.Progress, true, barWidth).View())
	}
}

func printAwarded(ids []string) {
	for _, id := range ids {
		fmt.Println(theme.Completed.Render("🏆 achievement earned: " + id))
	}
}

func printProfile(p xp.Profile) {
	fmt.Printf("Level %d  ·  %d XP", p.Level, p.TotalXP)
	if p.NextLevelXP > 0 {
		fmt.Printf(" (next level at %d)", p.NextLevelXP)
	}
	fmt.Printf("  ·  streak %d day(s), longest %d\n", p.StreakDays, p.LongestStreak)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

