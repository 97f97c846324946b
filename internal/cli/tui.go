package cli

import (
	"github.com/andy/focusclock/internal/app"
	"github.com/andy/focusclock/internal/tui"
	"github.com/spf13/cobra"
)

var (
	tuiLabel   string
	tuiCatchUp bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive terminal user interface for focusclock.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(cmd.Context(), appInstance, app.CountdownOptions{
		Label:   tuiLabel,
		CatchUp: tuiCatchUp,
	})
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVarP(&tuiLabel, "label", "l", "", "label for the countdown")
		c.Flags().BoolVar(&tuiCatchUp, "catch-up", false, "record countdowns that finished while focusclock was closed")
	}
}
