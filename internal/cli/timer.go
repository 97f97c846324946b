package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andy/focusclock/internal/app"
	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/service"
	"github.com/spf13/cobra"
)

var (
	runLabel   string
	runCatchUp bool
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run or inspect the countdown",
	Long:  `Run a countdown in the foreground, check the saved countdown, or reset it.`,
}

var timerRunCmd = &cobra.Command{
	Use:   "run [duration]",
	Short: "Run a countdown in the foreground",
	Long: `Run a countdown in the foreground until it completes or you press Ctrl+C.

Interrupting saves the countdown as paused; running again without a duration
resumes it. Durations accept 25m, 90s, 1h or a plain number of seconds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		finished := make(chan domain.Completion, 1)
		countdown, err := appInstance.OpenCountdown(ctx, app.CountdownOptions{
			Label:   runLabel,
			CatchUp: runCatchUp,
			OnComplete: func(c domain.Completion) {
				select {
				case finished <- c:
				default:
				}
			},
		})
		if err != nil {
			return err
		}

		if err := beginCountdown(ctx, countdown, args, finished); err != nil {
			return err
		}

		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		var last int64 = -1
		pollErr := service.Poll(sigCtx, countdown, appInstance.Config.Timer.TickInterval, func(st domain.Status) {
			if st.Remaining != last {
				last = st.Remaining
				fmt.Printf("\r  %s remaining ", domain.FormatClock(st.Remaining))
			}
		})
		fmt.Println()

		// Flush with a fresh context: sigCtx is already cancelled on Ctrl+C
		shutdownErr := countdown.Shutdown(context.Background())

		select {
		case c := <-finished:
			fmt.Printf("\a✓ Countdown complete (%s)\n", formatDuration(c.DurationSeconds))
		default:
			st := countdown.Status()
			if st.State == domain.RunStatePaused {
				fmt.Printf("⏸ Paused with %s left. Run 'focusclock timer run' to resume.\n", formatDuration(st.Remaining))
			}
		}

		if pollErr != nil && !errors.Is(pollErr, context.Canceled) {
			return errors.Join(pollErr, shutdownErr)
		}
		return shutdownErr
	},
}

// beginCountdown resumes a restored countdown or starts a new one
func beginCountdown(ctx context.Context, countdown *service.Countdown, args []string, finished <-chan domain.Completion) error {
	st := countdown.Status()

	switch st.State {
	case domain.RunStatePaused:
		if len(args) > 0 {
			return fmt.Errorf("a paused countdown has %s left: run without a duration to resume it, or 'focusclock timer reset' first",
				formatDuration(st.Remaining))
		}
		if err := countdown.Toggle(ctx); err != nil {
			return fmt.Errorf("failed to resume countdown: %w", err)
		}
		fmt.Printf("▶ Resumed with %s left\n", formatDuration(st.Remaining))
		return nil

	case domain.RunStateCompleted:
		select {
		case c := <-finished:
			fmt.Printf("✓ Previous countdown (%s) finished while you were away\n", formatDuration(c.DurationSeconds))
		default:
			fmt.Println("✓ Previous countdown finished while you were away")
		}
		if err := countdown.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset finished countdown: %w", err)
		}
	}

	seconds := st.Duration
	if len(args) > 0 {
		var err error
		if seconds, err = parseDurationArg(args[0]); err != nil {
			return err
		}
	}

	if err := countdown.Start(ctx, seconds); err != nil {
		return fmt.Errorf("failed to start countdown: %w", err)
	}
	fmt.Printf("▶ Countdown started: %s\n", formatDuration(seconds))
	if runLabel != "" {
		fmt.Printf("  Label: %s\n", runLabel)
	}
	return nil
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved countdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap, err := appInstance.SnapshotRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load countdown: %w", err)
		}
		if snap == nil {
			fmt.Println("No saved countdown")
			return nil
		}

		now := appInstance.Clock.Now()
		remaining := snap.RemainingAt(now)

		fmt.Printf("Countdown Status: %s\n", snap.RunState)
		if snap.Label != "" {
			fmt.Printf("  Label: %s\n", snap.Label)
		}
		fmt.Printf("  Length: %s\n", formatDuration(snap.DurationSeconds))
		fmt.Printf("  Remaining: %s\n", formatDuration(remaining))
		fmt.Printf("  Saved: %s\n", snap.SavedAt().Local().Format("2006-01-02 15:04:05"))
		if snap.RunState == domain.RunStateRunning {
			if remaining == 0 {
				fmt.Println("  (expired while no timer was attached)")
			} else {
				fmt.Printf("  Ends at: %s\n", now.Add(time.Duration(remaining)*time.Second).Local().Format("15:04:05"))
			}
		}

		return nil
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset [duration]",
	Short: "Discard the saved countdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		countdown, err := appInstance.OpenCountdown(ctx, app.CountdownOptions{})
		if err != nil {
			return err
		}

		seconds := int64(appInstance.Config.Timer.DefaultDuration / time.Second)
		if len(args) > 0 {
			if seconds, err = parseDurationArg(args[0]); err != nil {
				return err
			}
		}

		if err := countdown.ResetTo(ctx, seconds); err != nil {
			return fmt.Errorf("failed to reset countdown: %w", err)
		}

		fmt.Println("✓ Countdown reset")
		return nil
	},
}

func init() {
	timerRunCmd.Flags().StringVarP(&runLabel, "label", "l", "", "label for the countdown")
	timerRunCmd.Flags().BoolVar(&runCatchUp, "catch-up", false, "record a countdown that finished while focusclock was closed")

	timerCmd.AddCommand(timerRunCmd)
	timerCmd.AddCommand(timerStatusCmd)
	timerCmd.AddCommand(timerResetCmd)
}
