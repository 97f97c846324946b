package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show completed focus sessions",
	Long:  `List completed countdowns and summarise focus time.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("limit must not be negative")
		}

		sessions, err := appInstance.SessionService.List(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		fmt.Printf("%-5s %-20s %-12s %-25s %s\n", "ID", "Completed", "Length", "Label", "")
		fmt.Println("----------------------------------------------------------------------")

		var total int64
		for _, s := range sessions {
			note := ""
			if s.CaughtUp {
				note = "(while away)"
			}
			fmt.Printf("%-5d %-20s %-12s %-25s %s\n",
				s.ID,
				s.CompletedAt.Local().Format("2006-01-02 15:04"),
				formatDuration(s.DurationSeconds),
				truncate(s.Label, 25),
				note,
			)
			total += s.DurationSeconds
		}

		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Total: %d sessions, %s\n", len(sessions), formatDuration(total))
		return nil
	},
}

var sessionsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise focus time by day",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("days must be at least 1")
		}

		now := appInstance.Clock.Now().Local()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		since := today.AddDate(0, 0, -(days - 1))

		summary, err := appInstance.SessionService.Summary(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to summarise sessions: %w", err)
		}

		daily, err := appInstance.SessionService.Daily(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to summarise sessions: %w", err)
		}

		fmt.Printf("Focus since %s\n\n", since.Format("2006-01-02"))
		if summary.Count == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		fmt.Printf("%-12s %-10s %s\n", "Date", "Sessions", "Focus")
		fmt.Println("----------------------------------------")
		for _, d := range daily {
			fmt.Printf("%-12s %-10d %s\n", d.Date.Format("2006-01-02"), d.Count, formatDuration(d.TotalSeconds))
		}
		fmt.Println("----------------------------------------")
		fmt.Printf("Total: %d sessions, %s\n", summary.Count, formatDuration(summary.TotalSeconds))
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Int("limit", 20, "maximum sessions to show (0 for all)")
	sessionsSummaryCmd.Flags().Int("days", 7, "number of days to include, counting today")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsSummaryCmd)
}
