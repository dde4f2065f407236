package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/engine"
	"github.com/abhisek/curriculum/internal/ranking"
	"github.com/abhisek/curriculum/internal/ui/theme"
	"github.com/abhisek/curriculum/internal/xp"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank learners by a metric",
	Long: `Rank learners by one metric. Ties share no rank: they are ordered by
user id.

--scope limits the ranking to one discipline; --since limits it to activity
after a date (YYYY-MM-DD) or within a duration (e.g. 168h).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricVal, _ := cmd.Flags().GetString("metric")
		limit, _ := cmd.Flags().GetInt("limit")
		scopeVal, _ := cmd.Flags().GetString("scope")
		sinceVal, _ := cmd.Flags().GetString("since")

		m, err := ranking.ParseMetric(metricVal)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("limit") {
			limit = settings.LeaderboardLimit
		}
		scope := ranking.Scope{Discipline: content.Discipline(scopeVal)}
		if sinceVal != "" {
			scope.Since, err = parseSince(sinceVal, time.Now())
			if err != nil {
				return err
			}
		}

		return withEngine(cmd, func(e *engine.Engine) error {
			b, err := e.Leaderboard(cmd.Context(), userFlag(cmd), m, scope, limit)
			if err != nil {
				return err
			}
			printBoard(b)
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show a learner's level, XP and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(e *engine.Engine) error {
			p, err := e.Profile(cmd.Context(), userFlag(cmd))
			if err != nil {
				return err
			}
			bySource, err := e.XPBySource(cmd.Context(), userFlag(cmd))
			if err != nil {
				return err
			}
			fmt.Println(theme.Title.Render(displayUser(p.UserID)))
			printProfile(p)
			for _, src := range []xp.Source{xp.SourceLesson, xp.SourceDailyChallenge, xp.SourceAchievement, xp.SourceBonus} {
				if n := bySource[src]; n > 0 {
					fmt.Println(theme.Body.Render(fmt.Sprintf("  %-16s %d XP", src, n)))
				}
			}
			if !p.LastActivityDate.IsZero() {
				fmt.Println(theme.Hint.Render("last active " + p.LastActivityDate.Format(content.DateLayout)))
			}
			return nil
		})
	},
}

func init() {
	leaderboardCmd.Flags().StringP("metric", "m", string(ranking.MetricTotalXP), "Metric to rank by: "+metricNames())
	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of rows (0 for all; default from CURRICULUM_LEADERBOARD_LIMIT)")
	leaderboardCmd.Flags().String("scope", "", "Only count activity in this discipline")
	leaderboardCmd.Flags().String("since", "", "Only count activity since a date or within a duration")
}

func metricNames() string {
	names := make([]string, 0, len(ranking.AllMetrics()))
	for _, m := range ranking.AllMetrics() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// parseSince accepts a YYYY-MM-DD date or a duration back from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(content.DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want YYYY-MM-DD or a duration like 168h", s)
	}
	if d < 0 {
		d = -d
	}
	return now.Add(-d).UTC(), nil
}

func printBoard(b engine.Board) {
	title := "Leaderboard · " + string(b.Metric)
	if b.Scope.Discipline != "" {
		title += " · " + string(b.Scope.Discipline)
	}
	if !b.Scope.Since.IsZero() {
		title += " · since " + b.Scope.Since.Format(content.DateLayout)
	}
	fmt.Println(theme.Title.Render(title))

	if len(b.Rows) == 0 {
		fmt.Println(theme.Hint.Render("No learners yet."))
		return
	}
	fmt.Printf("%4s  %-24s  %s\n", "Rank", "User", "Value")
	fmt.Println(strings.Repeat("─", 44))
	for _, r := range b.Rows {
		line := fmt.Sprintf("%4d  %-24s  %d", r.Rank, truncate(r.UserID, 24), r.MetricValue)
		if b.Self != nil && r.UserID == b.Self.UserID {
			line = theme.Completed.Render(line)
		}
		fmt.Println(line)
	}
	if b.Self != nil && b.Self.Rank > len(b.Rows) {
		fmt.Println(theme.Hint.Render("   …"))
		fmt.Println(theme.Completed.Render(fmt.Sprintf("%4d  %-24s  %d", b.Self.Rank, truncate(b.Self.UserID, 24), b.Self.MetricValue)))
	}
}
