package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored data",
	Long: `Reset stored data.

Examples:
  focusclock reset sessions    # Delete the session history
  focusclock reset all         # Delete the history and the saved countdown`,
}

var resetSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Delete the session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes && !confirmPrompt("This will delete ALL completed sessions. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.SessionService.Clear(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("All sessions have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: sessions and the saved countdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes && !confirmPrompt("This will delete ALL data (sessions and the saved countdown). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		ctx := cmd.Context()

		if err := appInstance.SnapshotRepo.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear countdown: %w", err)
		}
		if err := appInstance.SessionService.Clear(ctx); err != nil {
			return err
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.PersistentFlags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")

	resetCmd.AddCommand(resetSessionsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
