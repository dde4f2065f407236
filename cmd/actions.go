package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/curriculum/internal/engine"
	"github.com/abhisek/curriculum/internal/ui/theme"
)

var startCmd = &cobra.Command{
	Use:   "start <lesson-id>",
	Short: "Mark a lesson as started",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *engine.Engine) error {
			out, err := e.StartLesson(cmd.Context(), userFlag(cmd), args[0])
			if err != nil {
				return explain(err)
			}
			printOutcome(out)
			return nil
		})
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <lesson-id>",
	Short: "Record lesson completion (100 completes the lesson)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, _ := cmd.Flags().GetInt("percent")
		return withEngine(cmd, func(e *engine.Engine) error {
			out, err := e.CompleteLesson(cmd.Context(), userFlag(cmd), args[0], pct)
			if err != nil {
				return explain(err)
			}
			printOutcome(out)
			return nil
		})
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge [challenge-id]",
	Short: "Attempt a daily challenge (today's by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, _ := cmd.Flags().GetInt("score")
		return withEngine(cmd, func(e *engine.Engine) error {
			ctx := cmd.Context()
			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				c, err := e.DailyChallenge(ctx, resolveDiscipline(cmd))
				if err != nil {
					return err
				}
				if c == nil {
					fmt.Println(theme.Hint.Render("No challenge today."))
					return nil
				}
				id = c.ID
			}

			out, err := e.AttemptChallenge(ctx, userFlag(cmd), id, score)
			if err != nil {
				return explain(err)
			}
			if out.Repeat && !out.Skipped {
				fmt.Println(theme.Hint.Render("Challenge already attempted; no XP awarded."))
			}
			printOutcome(out)
			return nil
		})
	},
}

func init() {
	completeCmd.Flags().IntP("percent", "p", 100, "Completion percentage (0-100)")
	challengeCmd.Flags().IntP("score", "s", 100, "Score (0-100); XP earned scales with it")
}

// explain turns engine sentinels into messages for the learner.
func explain(err error) error {
	switch {
	case errors.Is(err, engine.ErrLessonLocked):
		return fmt.Errorf("%w: finish the prerequisite modules first", err)
	case errors.Is(err, engine.ErrUnknownLesson), errors.Is(err, engine.ErrUnknownChallenge):
		return fmt.Errorf("%w (run `curriculum content import` to load a catalog)", err)
	default:
		return err
	}
}

func printOutcome(out engine.Outcome) {
	if out.Skipped {
		fmt.Println(theme.Hint.Render("No --user given: nothing recorded."))
		return
	}
	if out.Lesson.LessonID != "" {
		fmt.Printf("%s: %d%% (%s)\n", out.Lesson.LessonID, out.Lesson.CompletionPercentage, out.Lesson.Status)
	}
	if out.XPAwarded > 0 {
		fmt.Println(theme.Completed.Render(fmt.Sprintf("+%d XP", out.XPAwarded)))
	}
	for _, id := range out.SkillNodes {
		fmt.Println(theme.InProgress.Render("skill node advanced: " + id))
	}
	printAwarded(out.Achievements)
	printProfile(out.Profile)
}
