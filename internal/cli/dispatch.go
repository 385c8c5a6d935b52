package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/questlog/internal/engine"
)

// NewCompleteActivityCommand creates the complete-activity command.
func NewCompleteActivityCommand(rootOpts *RootOptions) *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "complete-activity <activity-id>",
		Short: "Record a completed activity and award its points",
		Long: `Record a completed activity.

Idempotent: completing the same activity twice awards its points once and
leaves the streak untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd.Context(), rootOpts, cmd,
				engine.CompleteActivity{ActivityID: args[0], Points: points})
		},
	}
	cmd.Flags().IntVar(&points, "points", 0, "points this activity awards")
	return cmd
}

// NewCompleteSectionCommand creates the complete-section command.
func NewCompleteSectionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-section <section-id>",
		Short: "Record a completed section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd.Context(), rootOpts, cmd,
				engine.CompleteSection{SectionID: args[0]})
		},
	}
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <achievement-id>",
		Short: "Unlock a catalog achievement",
		Long: `Unlock a catalog achievement by id.

Unknown ids and already-unlocked achievements are no-ops. Some catalog
achievements have no automatic trigger and unlock only through this path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd.Context(), rootOpts, cmd,
				engine.UnlockAchievement{AchievementID: args[0]})
		},
	}
}

// NewSetSectionCommand creates the set-section command.
func NewSetSectionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-section <section-id>",
		Short: "Set the current section (navigation, not progress)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd.Context(), rootOpts, cmd,
				engine.SetCurrentSection{SectionID: args[0]})
		},
	}
}

// runDispatch wires the app, dispatches one event, and reports the
// resulting snapshot. A persist failure surfaces as exit code 1 so scripts
// notice it, even though the in-memory state still advanced.
func runDispatch(ctx context.Context, opts *RootOptions, cmd *cobra.Command, ev engine.Event) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	state := app.Store.Dispatch(ctx, ev)
	formatter.VerboseLog("dispatched %s", ev.Kind())

	if opts.Format == "json" {
		if err := formatter.JSON(map[string]any{
			"kind":         ev.Kind(),
			"totalScore":   state.Progress.TotalScore,
			"streakCount":  state.Progress.StreakCount,
			"storageError": state.StorageError,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s applied; score %d, streak %d\n",
			ev.Kind(), state.Progress.TotalScore, state.Progress.StreakCount)
	}

	if state.StorageError != "" {
		return NewExitError(ExitFailure, state.StorageError)
	}
	return nil
}
